package xfile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Platform is the target a zone was built for. It fixes the header magic and
// the byte order of every value in the payload.
type Platform int

const (
	PlatformPC Platform = iota
	PlatformMacOS
	PlatformXbox360
	PlatformPS3
)

var platformNames = [...]string{"pc", "macos", "xbox360", "ps3"}

var (
	magicLittle = [8]byte{'I', 'W', 'f', 'f', 'u', '1', '0', '0'}
	magicBig    = [8]byte{'I', 'W', 'f', 'f', '0', '1', '0', '0'}
)

func (p Platform) IsValid() bool { return p >= 0 && int(p) < len(platformNames) }

func (p Platform) String() string {
	if p.IsValid() {
		return platformNames[p]
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

func (p Platform) bigEndian() bool { return p == PlatformXbox360 || p == PlatformPS3 }

func (p Platform) ByteOrder() binary.ByteOrder {
	if p.bigEndian() {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (p Platform) Magic() [8]byte {
	if p.bigEndian() {
		return magicBig
	}
	return magicLittle
}

func ParsePlatform(s string) (Platform, error) {
	for i, n := range platformNames {
		if strings.EqualFold(n, s) {
			return Platform(i), nil
		}
	}
	return 0, errors.Errorf("unknown platform %q (want one of %s)", s, strings.Join(platformNames[:], ", "))
}

func (p Platform) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, errors.Errorf("invalid platform %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Platform) UnmarshalText(b []byte) error {
	v, err := ParsePlatform(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
