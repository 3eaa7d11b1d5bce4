package imagecompressor

import "github.com/Skryldev/image-compressor/core"

// Inner exposes the underlying core.Processor for advanced use (e.g., direct
// codec access in tests).  Prefer the high-level API for normal usage.
func (p *Processor) Inner() *core.Processor { return p.inner }
