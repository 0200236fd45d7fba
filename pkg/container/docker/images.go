// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package docker

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/build"
	dockerimage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// PullImage starts pulling an image and returns its progress stream
func (c *Client) PullImage(ctx context.Context, image string) (io.ReadCloser, error) {
	logger.Debugw("pulling image", "image", image)

	reader, err := c.api.ImagePull(ctx, image, dockerimage.PullOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to pull image %s: %w", image, err)
	}
	return reader, nil
}

// BuildImage builds an image from the files named by src and returns the
// build progress stream. The temporary build context lives until the
// returned stream is closed.
func (c *Client) BuildImage(ctx context.Context, src runtime.BuildSource, tag string) (io.ReadCloser, error) {
	logger.Debugw("building image", "image", tag, "context", src.Context, "files", src.Files)

	tarFile, err := os.CreateTemp("", "dockerator-build-context-*.tar")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary tar file: %w", err)
	}
	cleanup := func() {
		if err := tarFile.Close(); err != nil {
			logger.Debugf("Failed to close tar file: %v", err)
		}
		if err := os.Remove(tarFile.Name()); err != nil {
			logger.Debugf("Failed to remove temporary file %s: %v", tarFile.Name(), err)
		}
	}

	if err := createTarFromFiles(src.Context, src.Files, tarFile); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	if _, err := tarFile.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to reset tar file pointer: %w", err)
	}

	response, err := c.api.ImageBuild(ctx, tarFile, build.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: src.DockerfileName(),
		Remove:     true,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to build image %s: %w", tag, err)
	}

	return &cleanupReadCloser{ReadCloser: response.Body, cleanup: cleanup}, nil
}

// FollowProgress decodes a pull or build progress stream until EOF
func (*Client) FollowProgress(ctx context.Context, stream io.Reader, onEvent func(runtime.ProgressEvent)) error {
	decoder := json.NewDecoder(stream)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg jsonmessage.JSONMessage
		if err := decoder.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode progress output: %w", err)
		}

		if msg.Error != nil {
			return fmt.Errorf("engine reported error: %w", msg.Error)
		}
		//nolint:staticcheck // older engines only populate the deprecated field
		if msg.ErrorMessage != "" {
			return fmt.Errorf("engine reported error: %s", msg.ErrorMessage)
		}

		if onEvent == nil {
			continue
		}
		event := runtime.ProgressEvent{
			ID:     msg.ID,
			Status: msg.Status,
			Stream: msg.Stream,
		}
		if msg.Progress != nil {
			event.Progress = msg.Progress.String()
		}
		onEvent(event)
	}
}

// createTarFromFiles writes a tar archive holding the given paths, relative
// to contextDir. Directories are added recursively. An empty file list
// archives the whole directory.
func createTarFromFiles(contextDir string, files []string, writer io.Writer) (retErr error) {
	root, err := filepath.Abs(contextDir)
	if err != nil {
		return fmt.Errorf("failed to resolve build context: %w", err)
	}
	if len(files) == 0 {
		files = []string{"."}
	}

	tw := tar.NewWriter(writer)
	defer func() {
		if err := tw.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close tar writer: %w", err)
		}
	}()

	seen := make(map[string]struct{})
	for _, f := range files {
		start := filepath.Join(root, f)
		rel, err := filepath.Rel(root, start)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("build file %q is outside the build context", f)
		}

		err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("failed to get relative path: %w", err)
			}
			if relPath == "." {
				return nil
			}
			if _, dup := seen[relPath]; dup {
				return nil
			}
			seen[relPath] = struct{}{}
			return addTarEntry(tw, path, filepath.ToSlash(relPath), d)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func addTarEntry(tw *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return fmt.Errorf("failed to read link %s: %w", path, err)
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("failed to create tar header: %w", err)
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	// #nosec G304 - only paths inside the build context are opened
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warnf("Failed to close file: %v", err)
		}
	}()

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	return nil
}

type cleanupReadCloser struct {
	io.ReadCloser
	cleanup func()
}

func (c *cleanupReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cleanup()
	return err
}
