package hcpnfile

import (
	"context"
	"github.com/jt05610/hcpn"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

type Service struct {
}

func (s *Service) Decode(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) Load(_ context.Context, r io.Reader) (*hcpn.Model, error) {
	f, err := s.Decode(r)
	if err != nil {
		return nil, err
	}
	return f.Model()
}

func (s *Service) Save(_ context.Context, w io.Writer, m *hcpn.Model) error {
	f, err := FromModel(m)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Service) Version() Version {
	return V1
}

// Open loads the hierarchy stored at path.
func Open(ctx context.Context, path string) (*hcpn.Model, error) {
	df, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = df.Close()
	}()
	return (&Service{}).Load(ctx, df)
}

// Create writes m to path, replacing any existing file.
func Create(ctx context.Context, path string, m *hcpn.Model) error {
	df, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := (&Service{}).Save(ctx, df, m); err != nil {
		_ = df.Close()
		return err
	}
	return df.Close()
}
