package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/security"
)

// maxReadFileBytes caps how much of a file is returned to the model.
const maxReadFileBytes = 100 * 1024

// ListFilesInput defines input for the list_files tool.
type ListFilesInput struct {
	Path string `json:"path,omitempty" jsonschema:"The directory to list. Defaults to the current working directory. Supports ~."`
}

// ReadFileInput defines input for the read_file tool.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"The file to read. Supports ~ for the home directory."`
}

// NewListFilesTool creates the privileged directory-listing tool.
func NewListFilesTool(logger log.Logger) (*Tool, error) {
	handler := func(ctx context.Context, in ListFilesInput) (string, error) {
		path := in.Path
		if path == "" {
			path = "."
		}
		abs, err := security.ExpandPath(path)
		if err != nil {
			return "", err
		}

		entries, err := os.ReadDir(abs)
		if err != nil {
			return "", fmt.Errorf("listing %s: %w", abs, err)
		}

		var dirs, files []string
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, e.Name()+"/")
			} else {
				files = append(files, e.Name())
			}
		}
		sort.Strings(dirs)
		sort.Strings(files)

		logger.Debug("listed directory", "path", abs, "entries", len(entries))

		var sb strings.Builder
		fmt.Fprintf(&sb, "Contents of %s:\n", abs)
		if len(dirs) == 0 && len(files) == 0 {
			sb.WriteString("(empty directory)")
			return sb.String(), nil
		}
		if len(dirs) > 0 {
			sb.WriteString("\nDirectories:\n")
			for _, d := range dirs {
				sb.WriteString("  " + d + "\n")
			}
		}
		if len(files) > 0 {
			sb.WriteString("\nFiles:\n")
			for _, f := range files {
				sb.WriteString("  " + f + "\n")
			}
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	}

	return NewTool(
		"list_files",
		"List the files and directories at a path on the host.",
		handler,
	)
}

// NewReadFileTool creates the privileged file-reading tool.
func NewReadFileTool(logger log.Logger) (*Tool, error) {
	handler := func(ctx context.Context, in ReadFileInput) (string, error) {
		abs, err := security.ExpandPath(in.Path)
		if err != nil {
			return "", err
		}

		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", abs, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory, use list_files instead", abs)
		}
		if !info.Mode().IsRegular() {
			return "", fmt.Errorf("%s is not a regular file", abs)
		}

		data, err := os.ReadFile(abs)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", abs, err)
		}

		truncated := false
		if len(data) > maxReadFileBytes {
			data = data[:maxReadFileBytes]
			truncated = true
		}

		logger.Debug("read file", "path", abs, "bytes", len(data))

		var sb strings.Builder
		fmt.Fprintf(&sb, "Contents of %s:\n\n```\n%s\n```", abs, strings.TrimRight(string(data), "\n"))
		if truncated {
			fmt.Fprintf(&sb, "\n\n[file truncated at %d bytes, full size %d]", maxReadFileBytes, info.Size())
		}
		return sb.String(), nil
	}

	return NewTool(
		"read_file",
		"Read the contents of a text file on the host.",
		handler,
	)
}
