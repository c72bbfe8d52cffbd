package utils

import (
	"github.com/valyala/bytebufferpool"
)

// textPool backs every text assembly in the pipeline. Rendered contexts and
// schema answers are built and discarded per request, so buffers are recycled.
var textPool bytebufferpool.Pool

// BuildString runs fill against a pooled buffer and returns the accumulated text.
func BuildString(fill func(buf *bytebufferpool.ByteBuffer)) string {
	buf := textPool.Get()
	defer textPool.Put(buf)

	fill(buf)
	return buf.String()
}
