package hcpnfile_test

import (
	"bytes"
	"context"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/hcpnfile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func load(t *testing.T) *hcpn.Model {
	m, err := hcpnfile.Open(context.Background(), "testdata/doubler.yaml")
	require.NoError(t, err)
	return m
}

func TestService_Load(t *testing.T) {
	m := load(t)
	assert.Equal(t, []string{"Top", "Worker"}, m.Modules())
	require.NoError(t, m.Validate())

	child, ok := m.Resolve("Top", "Work")
	require.True(t, ok)
	assert.Equal(t, "Worker", child)
	s, _ := m.Substitutions().Get("Top", "Work")
	assert.Equal(t, "In", s.Port("Start"))
	assert.Equal(t, "Out", s.Port("Done"))

	fc, ok := m.ClassOf("Worker", "Audit")
	require.True(t, ok)
	assert.True(t, fc.Has(hcpn.PlaceRef{Module: "Top", Place: "Audit"}))
	assert.True(t, m.MergedMarking(fc).Equal(hcpn.NewMultiset(0)))

	top, err := m.Marking("Top")
	require.NoError(t, err)
	assert.True(t, top.Tokens("Start").Equal(hcpn.NewMultiset(1, 2)))
	assert.True(t, top.Tokens("Price").Equal(hcpn.NewMultiset(decimal.RequireFromString("1.5"))))
	assert.True(t, top.Tokens("Mode").Equal(hcpn.NewMultiset("fast")))
}

func TestService_LoadAndRun(t *testing.T) {
	ctx := context.Background()
	m := load(t)
	out, err := hcpn.NewExecutor(m).Fire(ctx, "Top", "Work")
	require.NoError(t, err)
	assert.Equal(t, hcpn.Fired, out)

	top, err := m.Marking("Top")
	require.NoError(t, err)
	assert.True(t, top.Tokens("Start").Equal(hcpn.NewMultiset(2)))
	assert.True(t, top.Tokens("Done").Equal(hcpn.NewMultiset(2)))
	assert.True(t, top.Tokens("Audit").Equal(hcpn.NewMultiset(1)))
}

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := load(t)
	svc := &hcpnfile.Service{}
	assert.Equal(t, hcpnfile.V1, svc.Version())

	buf := new(bytes.Buffer)
	require.NoError(t, svc.Save(ctx, buf, m))
	again, err := svc.Load(ctx, buf)
	require.NoError(t, err)

	assert.Equal(t, m.Modules(), again.Modules())
	assert.Equal(t, m.Substitutions().Links(), again.Substitutions().Links())
	require.Len(t, again.Fusions().Classes(), 1)
	assert.Equal(t, m.Fusions().Classes()[0].Members, again.Fusions().Classes()[0].Members)
	for name, mk := range m.Markings() {
		got, err := again.Marking(name)
		require.NoError(t, err)
		assert.True(t, mk.Equal(got), name)
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	m := load(t)
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, hcpnfile.Create(ctx, path, m))

	again, err := hcpnfile.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, m.Modules(), again.Modules())

	err = hcpnfile.Create(ctx, filepath.Join(t.TempDir(), "missing", "saved.yaml"), m)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestService_LoadErrors(t *testing.T) {
	ctx := context.Background()
	svc := &hcpnfile.Service{}
	for name, tc := range map[string]struct {
		doc  string
		want error
	}{
		"version": {
			doc:  "version: v9\nmodules: []\n",
			want: hcpnfile.ErrUnsupportedVersion,
		},
		"colour set": {
			doc:  "modules:\n  - name: A\n    places:\n      - name: P\n        colorset: NOPE\n",
			want: hcpnfile.ErrUnknownColorSet,
		},
		"arc": {
			doc:  "modules:\n  - name: A\n    places:\n      - name: P\n    arcs:\n      - from: P\n        to: T\n        expression: x\n",
			want: hcpnfile.ErrUnknownNode,
		},
		"duplicate module": {
			doc:  "modules:\n  - name: A\n  - name: A\n",
			want: hcpn.ErrDuplicateName,
		},
		"unknown child": {
			doc:  "modules:\n  - name: A\n    transitions:\n      - name: T\nsubstitutions:\n  - parent: A\n    transition: T\n    child: B\n",
			want: hcpn.ErrUnknownModule,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Load(ctx, strings.NewReader(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
