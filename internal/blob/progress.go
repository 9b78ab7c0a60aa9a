package blob

import "io"

// progressReader wraps a reader and reports cumulative bytes read through a
// ProgressFunc. The S3 uploader reads part by part from a plain io.Reader,
// so reported counts only ever grow.
type progressReader struct {
	r       io.Reader
	total   int64
	written int64
	fn      ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		if p.fn != nil {
			p.fn(p.written, p.total)
		}
	}
	return n, err
}
