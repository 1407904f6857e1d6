package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/nginxutil/install-nginx/internal/exitcodes"
	"github.com/nginxutil/install-nginx/internal/system"
	ui "github.com/nginxutil/install-nginx/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check host preconditions for provisioning",
	Long: `Checks that a provisioning run would get past its preconditions:
- Running as root
- Required tools present (apt-get, apt-key, dpkg-deb, useradd, chown)
- OS release codename derivable
- Disk space and memory`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDoctor,
}

// requiredTools are the external commands the pipeline shells out to.
var requiredTools = []string{"apt-get", "apt-key", "dpkg-deb", "useradd", "chown"}

const minFreeDisk = 512 * 1024 * 1024 // package download plus extract scratch

type checkResult struct {
	Name    string
	Status  string // "pass", "warn", "fail"
	Message string
	Details []string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	c := ui.NewColorConfigFromGlobal()

	fmt.Println(c.Header(" HOST CHECK "))
	fmt.Println()

	results := []checkResult{
		checkPrivilege(c),
		checkTools(c),
		checkCodename(c),
		checkDisk(c),
		checkMemory(c),
		checkHost(c),
	}

	fmt.Println()
	fmt.Println(c.Separator(60))

	var passed, warned, failed int
	for _, r := range results {
		switch r.Status {
		case "pass":
			passed++
		case "warn":
			warned++
		case "fail":
			failed++
		}
	}

	summary := fmt.Sprintf("Checks: %d passed, %d warnings, %d failed", passed, warned, failed)
	if failed > 0 {
		fmt.Println(c.Error("✗ " + summary))
		return exitcodes.PreconditionErr("host is not ready for provisioning")
	} else if warned > 0 {
		fmt.Println(c.Warning("⚠ " + summary))
	} else {
		fmt.Println(c.Success("✓ " + summary))
	}
	return nil
}

func checkPrivilege(c *ui.ColorConfig) checkResult {
	result := checkResult{Name: "Privileges"}
	if err := system.NewGuard().Check(); err != nil {
		result.Status = "fail"
		result.Message = "Not running as root"
		result.Details = []string{"Re-run with sudo; provisioning writes system paths"}
	} else {
		result.Status = "pass"
		result.Message = "Running as root"
	}
	printCheck(result, c)
	return result
}

func checkTools(c *ui.ColorConfig) checkResult {
	result := checkResult{Name: "Required Tools"}

	var missing []string
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		result.Status = "fail"
		result.Message = fmt.Sprintf("Missing: %s", strings.Join(missing, ", "))
		result.Details = []string{"Install the missing packages (apt, dpkg, passwd, coreutils)"}
	} else {
		result.Status = "pass"
		result.Message = "All provisioning tools on PATH"
	}

	printCheck(result, c)
	return result
}

func checkCodename(c *ui.ColorConfig) checkResult {
	result := checkResult{Name: "OS Release"}

	codename, err := system.Codename()
	if err != nil {
		result.Status = "fail"
		result.Message = "Cannot derive release codename"
		result.Details = []string{
			fmt.Sprintf("Error: %v", err),
			"The vendor apt feed needs a codename (e.g. jammy, focal)",
		}
	} else {
		result.Status = "pass"
		result.Message = fmt.Sprintf("Codename %q", codename)
	}

	printCheck(result, c)
	return result
}

func checkDisk(c *ui.ColorConfig) checkResult {
	result := checkResult{Name: "Disk Space"}

	wd, err := os.Getwd()
	if err != nil {
		wd = "/"
	}
	usage, err := disk.Usage(wd)
	if err != nil {
		result.Status = "warn"
		result.Message = "Could not check disk space"
		result.Details = []string{fmt.Sprintf("Error: %v", err)}
	} else if usage.Free < minFreeDisk {
		result.Status = "fail"
		result.Message = fmt.Sprintf("Only %s free in %s", ui.FormatBytes(usage.Free), wd)
		result.Details = []string{"The package download and extract scratch need more room"}
	} else {
		result.Status = "pass"
		result.Message = fmt.Sprintf("%s free in %s", ui.FormatBytes(usage.Free), wd)
	}

	printCheck(result, c)
	return result
}

func checkMemory(c *ui.ColorConfig) checkResult {
	result := checkResult{Name: "Memory"}

	vm, err := mem.VirtualMemory()
	if err != nil {
		result.Status = "warn"
		result.Message = "Could not check memory"
		result.Details = []string{fmt.Sprintf("Error: %v", err)}
	} else if vm.UsedPercent > 95 {
		result.Status = "warn"
		result.Message = fmt.Sprintf("Memory nearly full (%.0f%% used)", vm.UsedPercent)
	} else {
		result.Status = "pass"
		result.Message = fmt.Sprintf("%s available of %s", ui.FormatBytes(vm.Available), ui.FormatBytes(vm.Total))
	}

	printCheck(result, c)
	return result
}

func checkHost(c *ui.ColorConfig) checkResult {
	result := checkResult{Name: "Platform"}

	info, err := host.Info()
	if err != nil {
		result.Status = "warn"
		result.Message = "Could not identify the platform"
		result.Details = []string{fmt.Sprintf("Error: %v", err)}
	} else if info.Platform != "ubuntu" {
		result.Status = "warn"
		result.Message = fmt.Sprintf("Platform is %s %s (the vendor feed targets Ubuntu)", info.Platform, info.PlatformVersion)
	} else {
		result.Status = "pass"
		result.Message = fmt.Sprintf("Ubuntu %s (%s)", info.PlatformVersion, info.KernelArch)
	}

	printCheck(result, c)
	return result
}

func printCheck(r checkResult, c *ui.ColorConfig) {
	var icon, msg string
	switch r.Status {
	case "pass":
		icon = c.Success("✓")
		msg = c.Success(r.Message)
	case "warn":
		icon = c.Warning("⚠")
		msg = c.Warning(r.Message)
	case "fail":
		icon = c.Error("✗")
		msg = c.Error(r.Message)
	}

	fmt.Printf("%s %s: %s\n", icon, c.Apply(c.Theme.Header, r.Name), msg)
	for _, detail := range r.Details {
		fmt.Printf("  %s %s\n", c.Apply(c.Theme.Pending, "→"), detail)
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
