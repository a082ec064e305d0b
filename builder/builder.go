// Package builder assembles a hierarchy from a file and the files it includes, looking them up in a list of search
// directories.
package builder

import (
	"context"
	"errors"
	"fmt"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/hcpnfile"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrIncludeCycle = errors.New("include cycle")

// Decoder reads one file without resolving its includes.
type Decoder interface {
	Decode(r io.Reader) (*hcpnfile.File, error)
}

type Builder struct {
	SearchDirs []string
	services   map[string]Decoder
	seen       map[string]bool
	loading    map[string]bool
}

func NewBuilder(dirs ...string) *Builder {
	if dirs == nil {
		dirs = []string{"."}
	}
	b := &Builder{
		SearchDirs: dirs,
	}
	return b.WithService("yaml", &hcpnfile.Service{}).WithService("yml", &hcpnfile.Service{})
}

// WithService decodes files with the given extension using srv.
func (b *Builder) WithService(ext string, srv Decoder) *Builder {
	if b.services == nil {
		b.services = make(map[string]Decoder)
	}
	b.services[strings.TrimPrefix(ext, ".")] = srv
	return b
}

func (b *Builder) WithSearchDirs(dirs ...string) *Builder {
	b.SearchDirs = append(b.SearchDirs, dirs...)
	return b
}

func (b *Builder) service(f string) (Decoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(f), ".")
	if ext == "" {
		ext = "yaml"
	}
	srv, ok := b.services[ext]
	if !ok {
		return nil, fmt.Errorf("no decoder for %q files", ext)
	}
	return srv, nil
}

func (b *Builder) find(f string) (string, error) {
	if filepath.IsAbs(f) {
		return f, nil
	}
	for _, dir := range b.SearchDirs {
		path := filepath.Join(dir, f)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", f, os.ErrNotExist)
}

// Build loads f and everything it includes, then builds the hierarchy. A file included more than once is merged
// once.
func (b *Builder) Build(ctx context.Context, f string) (*hcpn.Model, error) {
	b.seen = make(map[string]bool)
	b.loading = make(map[string]bool)
	file, err := b.resolve(ctx, f)
	if err != nil {
		return nil, err
	}
	return file.Model()
}

func (b *Builder) resolve(ctx context.Context, f string) (*hcpnfile.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := b.find(f)
	if err != nil {
		return nil, err
	}
	if b.loading[path] {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, path)
	}
	srv, err := b.service(path)
	if err != nil {
		return nil, err
	}
	file, err := b.decode(srv, path)
	if err != nil {
		return nil, err
	}
	b.loading[path] = true
	defer delete(b.loading, path)

	ret := &hcpnfile.File{Version: file.Version}
	for _, inc := range file.Include {
		incPath, err := b.find(inc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if b.seen[incPath] {
			continue
		}
		sub, err := b.resolve(ctx, inc)
		if err != nil {
			return nil, err
		}
		if err := ret.Merge(sub); err != nil {
			return nil, err
		}
	}
	file.Include = nil
	if err := ret.Merge(file); err != nil {
		return nil, err
	}
	b.seen[path] = true
	return ret, nil
}

func (b *Builder) decode(srv Decoder, path string) (*hcpnfile.File, error) {
	df, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = df.Close()
	}()
	f, err := srv.Decode(df)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
