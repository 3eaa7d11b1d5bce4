package core

// Codec pairs the decoder and encoder for one format family.
type Codec struct {
	Decoder Decoder
	Encoder Encoder
}

// Codecs is the fixed codec table.  The format set is closed, so dispatch is
// a single switch rather than an open registry.  A Codecs value is built
// once and only read afterwards.
type Codecs struct {
	PNG  Codec
	JPEG Codec
	WebP Codec
	GIF  Codec
}

func (c *Codecs) codec(f Format) (Codec, bool) {
	switch f {
	case FormatPNG:
		return c.PNG, true
	case FormatJPEG:
		return c.JPEG, true
	case FormatWebP:
		return c.WebP, true
	case FormatGIF:
		return c.GIF, true
	}
	return Codec{}, false
}

// DecoderFor returns the decoder for f.
func (c *Codecs) DecoderFor(f Format) (Decoder, bool) {
	codec, ok := c.codec(f)
	if !ok || codec.Decoder == nil {
		return nil, false
	}
	return codec.Decoder, true
}

// EncoderFor returns the encoder for f.
func (c *Codecs) EncoderFor(f Format) (Encoder, bool) {
	codec, ok := c.codec(f)
	if !ok || codec.Encoder == nil {
		return nil, false
	}
	return codec.Encoder, true
}

// Set replaces the codec for f.  Intended for construction time only.
func (c *Codecs) Set(f Format, codec Codec) {
	switch f {
	case FormatPNG:
		c.PNG = codec
	case FormatJPEG:
		c.JPEG = codec
	case FormatWebP:
		c.WebP = codec
	case FormatGIF:
		c.GIF = codec
	}
}
