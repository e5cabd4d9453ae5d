package markers

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wtf-protocol/helpers/sandwich"
	"github.com/wtf-protocol/helpers/utils"
)

func hexOf(s string) string { return "0x" + hex.EncodeToString([]byte(s)) }

func writeMarkersFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "markers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeMarkersFile(t, `
bottom_bread: "`+hexOf(`"sub":"`)+`"
top_bread: "`+hexOf(`",`)+`"
exp_bottom_bread: "`+hexOf(`,"exp":`)+`"
exp_top_bread: "`+hex.EncodeToString([]byte(`}`))+`"
aud: "`+hexOf(`"aud":"wtf.example"`)+`"
`)

	s, err := LoadFile(path)
	require.NoError(t, err)

	ctx := context.Background()

	id, err := s.Bread(ctx, sandwich.ClaimID)
	require.NoError(t, err)
	require.Equal(t, sandwich.Bread{Bottom: []byte(`"sub":"`), Top: []byte(`",`)}, id)

	exp, err := s.Bread(ctx, sandwich.ClaimExpiry)
	require.NoError(t, err)
	require.Equal(t, sandwich.Bread{Bottom: []byte(`,"exp":`), Top: []byte(`}`)}, exp)

	aud, err := s.Audience(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte(`"aud":"wtf.example"`), aud)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read markers file")

	_, err = LoadFile(writeMarkersFile(t, "bottom_bread: [unterminated"))
	require.ErrorContains(t, err, "failed to parse markers file")
}

func TestStaticErrors(t *testing.T) {
	ctx := context.Background()
	s := &Static{BottomBread: "0xzz"}

	_, err := s.Bread(ctx, sandwich.ClaimID)
	var decodeErr *utils.DecodeError
	require.True(t, errors.As(err, &decodeErr))

	_, err = s.Bread(ctx, sandwich.ClaimAudience)
	var optionErr *utils.UnrecognizedOptionError
	require.True(t, errors.As(err, &optionErr))

	_, err = s.Audience(ctx)
	require.EqualError(t, err, "no aud marker configured")
}
