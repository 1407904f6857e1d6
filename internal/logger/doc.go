// Package logger provides the diagnostic log channel for install-nginx:
// a global zap sugared logger writing timestamped, severity-tagged lines
// to stderr under the install-nginx identity. The ui package owns
// user-facing output; this package owns everything an operator would
// grep out of a failed provisioning run.
package logger
