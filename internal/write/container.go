package write

import (
	"image/color"

	"github.com/gifcore/gifcore/internal/lzw"
	"github.com/gifcore/gifcore/internal/model"
)

// pageBuffer is a growing byte buffer written a page at a time: it avoids
// repeated full-buffer copies while still handing back one contiguous
// slice at the end.
type pageBuffer struct {
	pages    [][]byte
	page     int
	cursor   int
	pageSize int
}

const bufferPageSize = 4096

func newPageBuffer() *pageBuffer {
	pb := &pageBuffer{page: -1, pageSize: bufferPageSize}
	pb.newPage()
	return pb
}

func (pb *pageBuffer) newPage() {
	pb.page++
	pb.pages = append(pb.pages, make([]byte, pb.pageSize))
	pb.cursor = 0
}

func (pb *pageBuffer) WriteByte(b byte) {
	if pb.cursor >= pb.pageSize {
		pb.newPage()
	}
	pb.pages[pb.page][pb.cursor] = b
	pb.cursor++
}

func (pb *pageBuffer) Write(data []byte) {
	for _, b := range data {
		pb.WriteByte(b)
	}
}

func (pb *pageBuffer) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		pb.WriteByte(s[i])
	}
}

func (pb *pageBuffer) Bytes() []byte {
	out := make([]byte, 0, pb.page*pb.pageSize+pb.cursor)
	for i, page := range pb.pages {
		if i < len(pb.pages)-1 {
			out = append(out, page...)
		} else {
			out = append(out, page[:pb.cursor]...)
		}
	}
	return out
}

// ContainerWriter frames packaged frames into a GIF89a byte stream:
// writeHeader, writeLSD, writeNetscapeExt, writeGraphicCtrlExt,
// writeImageDesc, and writeLocalPalette build up the stream incrementally,
// with per-frame local palettes and disposal rather than a single
// encoder-wide palette.
type ContainerWriter struct {
	width, height int
	once          bool
	wroteHeader   bool
	out           *pageBuffer
}

// NewContainerWriter creates a writer for a canvas of the given size. once
// disables the Netscape looping extension (a single playthrough).
func NewContainerWriter(width, height int, once bool) *ContainerWriter {
	return &ContainerWriter{
		width:  width,
		height: height,
		once:   once,
		out:    newPageBuffer(),
	}
}

// WriteFrame appends one graphic-control/image-descriptor block for f,
// with the given delay in 1/100s units. The first call also emits the GIF
// header, logical screen descriptor, and looping extension.
func (w *ContainerWriter) WriteFrame(f *model.GifFrame, delayUnits int) {
	if !w.wroteHeader {
		w.writeHeader()
		w.writeLSD()
		if !w.once {
			w.writeNetscapeExt()
		}
		w.wroteHeader = true
	}

	w.writeGraphicCtrlExt(f, delayUnits)
	w.writeImageDesc(f)
	w.writeLocalPalette(f.Palette)
	w.writePixels(f)
}

// Close appends the GIF trailer and returns the finished byte stream.
func (w *ContainerWriter) Close() []byte {
	if !w.wroteHeader {
		// No frame was ever written (e.g. every frame trimmed/collapsed);
		// the pipeline orchestrator treats this as NoFrames before
		// reaching here, so this branch exists only as a safety net.
		w.writeHeader()
		w.writeLSD()
		w.wroteHeader = true
	}
	w.out.WriteByte(0x3b)
	return w.out.Bytes()
}

func (w *ContainerWriter) writeHeader() {
	w.out.WriteString("GIF89a")
}

func (w *ContainerWriter) writeLSD() {
	w.writeShort(w.width)
	w.writeShort(w.height)
	// No global color table: every frame carries its own local palette.
	w.out.WriteByte(0x70) // color resolution = 7, GCT flag = 0, sort = 0, size = 0
	w.out.WriteByte(0)    // background color index
	w.out.WriteByte(0)    // pixel aspect ratio, assume square
}

func (w *ContainerWriter) writeNetscapeExt() {
	w.out.WriteByte(0x21) // extension introducer
	w.out.WriteByte(0xff) // application extension label
	w.out.WriteByte(11)
	w.out.WriteString("NETSCAPE2.0")
	w.out.WriteByte(3)
	w.out.WriteByte(1)
	w.writeShort(0) // loop forever
	w.out.WriteByte(0)
}

func (w *ContainerWriter) writeGraphicCtrlExt(f *model.GifFrame, delayUnits int) {
	w.out.WriteByte(0x21)
	w.out.WriteByte(0xf9)
	w.out.WriteByte(4)

	disp := 1 // "do not dispose": leave the drawn pixels in place
	if f.Dispose == model.DisposeRestoreBackground {
		disp = 2
	}

	transp := 0
	if f.TransparentIndex >= 0 {
		transp = 1
	}

	w.out.WriteByte(byte(disp<<2 | transp))
	w.writeShort(delayUnits)
	transIndex := 0
	if f.TransparentIndex >= 0 {
		transIndex = f.TransparentIndex
	}
	w.out.WriteByte(byte(transIndex))
	w.out.WriteByte(0)
}

func (w *ContainerWriter) writeImageDesc(f *model.GifFrame) {
	w.out.WriteByte(0x2c)
	w.writeShort(f.Left)
	w.writeShort(f.Top)
	w.writeShort(f.Width)
	w.writeShort(f.Height)

	size := paletteSizeField(len(f.Palette))
	w.out.WriteByte(byte(0x80 | size)) // local color table present
}

// writeLocalPalette pads the frame's palette up to a power of two in
// [4,256] and writes the RGB triples.
func (w *ContainerWriter) writeLocalPalette(palette []color.RGBA) {
	size := 1 << (paletteSizeField(len(palette)) + 1)
	for i := 0; i < size; i++ {
		if i < len(palette) {
			c := palette[i]
			w.out.WriteByte(c.R)
			w.out.WriteByte(c.G)
			w.out.WriteByte(c.B)
		} else {
			w.out.WriteByte(0)
			w.out.WriteByte(0)
			w.out.WriteByte(0)
		}
	}
}

// paletteSizeField returns the 3-bit GIF color table size field such that
// 2^(field+1) is the smallest power of two in [4,256] covering n colors.
func paletteSizeField(n int) byte {
	entries := 4
	field := 1
	for entries < n {
		entries <<= 1
		field++
	}
	return byte(field)
}

func (w *ContainerWriter) writeShort(v int) {
	w.out.WriteByte(byte(v & 0xff))
	w.out.WriteByte(byte((v >> 8) & 0xff))
}

// writePixels runs the lossy LZW writer over the frame's indexed pixels
// and splits the result into GIF's <=255 byte sub-blocks.
func (w *ContainerWriter) writePixels(f *model.GifFrame) {
	loss := lzw.LossBudget(f.Quality)
	encoder := lzw.NewWriter(f.Palette, loss)
	initCodeSize, data := encoder.Encode(f.Indexed)

	w.out.WriteByte(initCodeSize)
	for len(data) > 0 {
		n := len(data)
		if n > 255 {
			n = 255
		}
		w.out.WriteByte(byte(n))
		w.out.Write(data[:n])
		data = data[n:]
	}
	w.out.WriteByte(0) // block terminator
}
