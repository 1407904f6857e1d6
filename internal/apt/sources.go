package apt

import (
	"context"
	"fmt"
	"os"

	"github.com/nginxutil/install-nginx/internal/files"
	"github.com/nginxutil/install-nginx/internal/logger"
)

// vendorRepoURL is the codename-parameterized vendor repository.
const vendorRepoURL = "http://nginx.org/packages/ubuntu/"

// sourcesContent renders the binary and source feed entries for the
// given release codename.
func sourcesContent(codename string) string {
	return fmt.Sprintf("deb %s %s nginx\ndeb-src %s %s nginx\n",
		vendorRepoURL, codename, vendorRepoURL, codename)
}

// AddSources registers the vendor's binary and source package feeds for
// the given codename. The write is idempotent: when the file already
// carries exactly the desired entries nothing is touched, otherwise the
// existing file is backed up and rewritten, so entries are never
// duplicated across reruns.
func (c *Client) AddSources(ctx context.Context, codename string) error {
	want := sourcesContent(codename)

	existing, err := os.ReadFile(c.SourcesFile)
	switch {
	case err == nil && string(existing) == want:
		logger.Debugf("package sources already registered in %s", c.SourcesFile)
		return nil
	case err == nil:
		bak, berr := files.Backup(c.SourcesFile)
		if berr != nil {
			return fmt.Errorf("back up %s: %w", c.SourcesFile, berr)
		}
		logger.Infof("replacing %s (backup at %s)", c.SourcesFile, bak)
	case !os.IsNotExist(err):
		return fmt.Errorf("read %s: %w", c.SourcesFile, err)
	}

	if err := os.WriteFile(c.SourcesFile, []byte(want), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.SourcesFile, err)
	}
	return nil
}
