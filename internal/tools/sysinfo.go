package tools

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/skiff-ai/skiff/internal/log"
)

// SystemInfoInput defines input for the get_system_info tool (none needed).
type SystemInfoInput struct{}

// NewSystemInfoTool creates the privileged host-inspection tool.
func NewSystemInfoTool(logger log.Logger) (*Tool, error) {
	handler := func(ctx context.Context, in SystemInfoInput) (string, error) {
		logger.Debug("collecting system info")
		return SystemSummary(ctx), nil
	}

	return NewTool(
		"get_system_info",
		"Get information about the host: OS, hostname, user, working directory, memory and disk usage.",
		handler,
	)
}

// SystemSummary collects a human-readable host description. Individual
// probes that fail are skipped so a partial picture still comes back; the
// computer-use system prompt embeds the same summary.
func SystemSummary(ctx context.Context) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if info, err := host.InfoWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "Platform: %s %s\n", info.Platform, info.PlatformVersion)
	}
	if hostname, err := os.Hostname(); err == nil {
		fmt.Fprintf(&sb, "Hostname: %s\n", hostname)
	}
	if u, err := user.Current(); err == nil {
		fmt.Fprintf(&sb, "User: %s\n", u.Username)
	}
	if wd, err := os.Getwd(); err == nil {
		fmt.Fprintf(&sb, "Working directory: %s\n", wd)
	}
	fmt.Fprintf(&sb, "CPUs: %d\n", runtime.NumCPU())

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "Memory: %s used of %s (%.0f%%)\n",
			formatBytes(vm.Used), formatBytes(vm.Total), vm.UsedPercent)
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		fmt.Fprintf(&sb, "Disk (/): %s used of %s (%.0f%%)\n",
			formatBytes(du.Used), formatBytes(du.Total), du.UsedPercent)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
