package xslog

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/x-thooh/geotech/pkg/log"
)

// resolveEncoding maps a codec name onto an encoding. UTF-8 and the empty
// name need no transform and resolve to nil.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf8", "utf-8", "u8":
		return nil, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", log.ErrUnknownEncoding, name)
}

type lineEncoder struct {
	enc *encoding.Encoder
}

func newLineEncoder(e encoding.Encoding) *lineEncoder {
	if e == nil {
		return nil
	}
	return &lineEncoder{enc: e.NewEncoder()}
}

// encode is not safe for concurrent use; callers hold the handler lock.
func (l *lineEncoder) encode(b []byte) ([]byte, error) {
	if l == nil {
		return b, nil
	}
	return l.enc.Bytes(b)
}
