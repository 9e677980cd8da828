package xslog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/x-thooh/geotech/pkg/log"
)

// %f 微秒，六位补零
var microseconds = strftime.AppendFunc(func(b []byte, t time.Time) []byte {
	us := t.Nanosecond() / int(time.Microsecond)
	for d := 100000; d > 1 && us < d; d /= 10 {
		b = append(b, '0')
	}
	return strconv.AppendInt(b, int64(us), 10)
})

// compileDatefmt checks every directive of layout up front so a bad datefmt
// fails at configure time.
func compileDatefmt(layout string) (*strftime.Strftime, error) {
	p, err := strftime.New(layout, strftime.WithSpecification('f', microseconds))
	if err != nil {
		return nil, fmt.Errorf("%w: datefmt %q: %v", log.ErrInvalidFormat, layout, err)
	}
	return p, nil
}
