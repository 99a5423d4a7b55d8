package xfile

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/xfileTools/xstream"
)

func TestCheckHeader(t *testing.T) {
	pc := appendHeader(nil, PlatformPC)
	ps3 := appendHeader(nil, PlatformPS3)

	swapped := append([]byte(nil), pc...)
	swapped[8], swapped[9], swapped[10], swapped[11] = 0, 0, 0, Version

	future := append([]byte(nil), pc...)
	future[8] = 6

	for _, tc := range []struct {
		name string
		data []byte
		p    Platform
		want error
	}{
		{"pc", pc, PlatformPC, nil},
		{"macos shares pc magic", pc, PlatformMacOS, nil},
		{"ps3", ps3, PlatformPS3, nil},
		{"console zone on pc", ps3, PlatformPC, xstream.ErrPlatformMismatch},
		{"pc zone on xbox", pc, PlatformXbox360, xstream.ErrPlatformMismatch},
		{"bad magic", []byte("IWffxxxx\x05\x00\x00\x00"), PlatformPC, xstream.ErrBadMagic},
		{"byte swapped version", swapped, PlatformPC, xstream.ErrEndianness},
		{"other version", future, PlatformPC, xstream.ErrBadVersion},
		{"short", pc[:10], PlatformPC, xstream.ErrTruncated},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := checkHeader(tc.data, tc.p)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestHeaderKindsAreDistinct(t *testing.T) {
	err := checkHeader(appendHeader(nil, PlatformPS3), PlatformPC)
	assert.False(t, errors.Is(err, xstream.ErrBadMagic))
	assert.False(t, errors.Is(err, xstream.ErrEndianness))
}

func TestInflate(t *testing.T) {
	payload := []byte("framing and asset list and deferred data")
	body, err := deflate(payload)
	require.NoError(t, err)

	out, err := inflate(body, DefaultMaxInflatedSize)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	out, err = inflate(body, int64(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = inflate(body, int64(len(payload)-1))
	assert.True(t, errors.Is(err, xstream.ErrDecompress))

	_, err = inflate([]byte("not zlib at all"), DefaultMaxInflatedSize)
	assert.True(t, errors.Is(err, xstream.ErrDecompress))
}

func TestNewDecoderInflateLimit(t *testing.T) {
	data, err := Encode(PlatformPC, sampleAssets())
	require.NoError(t, err)

	_, err = NewDecoder(data, WithMaxInflatedSize(64), quiet())
	assert.True(t, errors.Is(err, xstream.ErrDecompress))

	corrupt := append([]byte(nil), data[:headerSize+4]...)
	_, err = NewDecoder(corrupt, quiet())
	assert.True(t, errors.Is(err, xstream.ErrDecompress))
}

func TestInflateExported(t *testing.T) {
	payload, err := EncodePayload(PlatformXbox360, sampleAssets())
	require.NoError(t, err)
	data, err := Encode(PlatformXbox360, sampleAssets())
	require.NoError(t, err)

	out, err := Inflate(data, WithPlatform(PlatformXbox360), quiet())
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = Inflate(data, quiet())
	assert.True(t, errors.Is(err, xstream.ErrPlatformMismatch))
}

func TestPlatformText(t *testing.T) {
	var cfg struct {
		Platform Platform `toml:"platform"`
	}
	require.NoError(t, toml.Unmarshal([]byte(`platform = "PS3"`), &cfg))
	assert.Equal(t, PlatformPS3, cfg.Platform)

	assert.Error(t, toml.Unmarshal([]byte(`platform = "dreamcast"`), &cfg))

	b, err := toml.Marshal(struct {
		Platform Platform `toml:"platform"`
	}{PlatformXbox360})
	require.NoError(t, err)
	assert.Contains(t, string(b), "xbox360")

	_, err = Platform(9).MarshalText()
	assert.Error(t, err)
}
