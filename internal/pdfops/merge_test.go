package pdfops

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"image/jpeg"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfFile assembles a minimal PDF body object by object, tracking byte
// offsets so the cross-reference table comes out correct.
type pdfFile struct {
	buf     bytes.Buffer
	offsets []int
}

func newPDFFile() *pdfFile {
	f := &pdfFile{}
	f.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	return f
}

func (f *pdfFile) addObject(body string) int {
	num := len(f.offsets) + 1
	f.offsets = append(f.offsets, f.buf.Len())
	fmt.Fprintf(&f.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	return num
}

func (f *pdfFile) addStream(dict string, data []byte) int {
	num := len(f.offsets) + 1
	f.offsets = append(f.offsets, f.buf.Len())
	fmt.Fprintf(&f.buf, "%d 0 obj\n%s\nstream\n", num, dict)
	f.buf.Write(data)
	f.buf.WriteString("\nendstream\nendobj\n")
	return num
}

func (f *pdfFile) write(t *testing.T, path string, root int) {
	t.Helper()
	xrefOffset := f.buf.Len()
	fmt.Fprintf(&f.buf, "xref\n0 %d\n", len(f.offsets)+1)
	f.buf.WriteString("0000000000 65535 f \n")
	for _, off := range f.offsets {
		fmt.Fprintf(&f.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&f.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(f.offsets)+1, root, xrefOffset)
	if err := os.WriteFile(path, f.buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeSimplePDF writes a valid single-page document with no images.
func writeSimplePDF(t *testing.T, path string) {
	t.Helper()
	f := newPDFFile()
	content := []byte("q Q")
	f.addObject("<< /Type /Catalog /Pages 2 0 R >>")
	f.addObject("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	f.addObject("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>")
	f.addStream(fmt.Sprintf("<< /Length %d >>", len(content)), content)
	f.write(t, path, 1)
}

// writeImagePDF writes a single-page document whose page draws one
// flate-compressed DeviceRGB image. The samples are pseudo-random so the
// compressed stream stays large enough to clear any realistic size gate.
func writeImagePDF(t *testing.T, path string, width, height int) {
	t.Helper()
	samples := make([]byte, width*height*3)
	rand.New(rand.NewSource(7)).Read(samples)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(samples); err != nil {
		t.Fatalf("compress samples: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}

	f := newPDFFile()
	content := []byte(fmt.Sprintf("q %d 0 0 %d 0 0 cm /Im0 Do Q", width, height))
	f.addObject("<< /Type /Catalog /Pages 2 0 R >>")
	f.addObject("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	f.addObject(fmt.Sprintf(
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /XObject << /Im0 5 0 R >> >> /Contents 4 0 R >>",
		width, height))
	f.addStream(fmt.Sprintf("<< /Length %d >>", len(content)), content)
	f.addStream(fmt.Sprintf(
		"<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode /Length %d >>",
		width, height, compressed.Len()), compressed.Bytes())
	f.write(t, path, 1)
}

// findImageStream returns the first image XObject in the document.
func findImageStream(t *testing.T, pdfCtx *model.Context) types.StreamDict {
	t.Helper()
	for _, entry := range pdfCtx.XRefTable.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, ok := sd.Dict["Subtype"].(types.Name); ok && subtype.Value() == "Image" {
			return sd
		}
	}
	t.Fatal("no image stream in document")
	return types.StreamDict{}
}

func TestUnifyGroupMergesAtAllLevels(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeSimplePDF(t, a)
	writeSimplePDF(t, b)

	for _, level := range []Level{LevelNone, LevelLight, LevelFull} {
		dest := filepath.Join(dir, "out", string(level)+".pdf")
		replaced, err := UnifyGroup(context.Background(), dest, []string{a, b}, level, ImageOptions{}, nil)
		if err != nil {
			t.Fatalf("level %s: UnifyGroup: %v", level, err)
		}
		if replaced != 0 {
			t.Fatalf("level %s: replaced = %d for imageless sources", level, replaced)
		}
		pages, err := api.PageCountFile(dest)
		if err != nil {
			t.Fatalf("level %s: page count: %v", level, err)
		}
		if pages != 2 {
			t.Fatalf("level %s: merged page count = %d, want 2", level, pages)
		}
		if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("level %s: temp file left behind", level)
		}
	}
}

func TestUnifyGroupSingleSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "only.pdf")
	writeSimplePDF(t, src)

	dest := filepath.Join(dir, "out", "only.pdf")
	if _, err := UnifyGroup(context.Background(), dest, []string{src}, LevelLight, ImageOptions{}, nil); err != nil {
		t.Fatalf("UnifyGroup: %v", err)
	}
	pages, err := api.PageCountFile(dest)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if pages != 1 {
		t.Fatalf("page count = %d, want 1", pages)
	}
}

func TestUnifyGroupMalformedSourceLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	writeSimplePDF(t, good)
	bad := filepath.Join(dir, "bad.pdf")
	if err := os.WriteFile(bad, []byte("%PDF-1.4\nnot a document"), 0o644); err != nil {
		t.Fatalf("write bad source: %v", err)
	}

	dest := filepath.Join(dir, "out", "merged.pdf")
	if _, err := UnifyGroup(context.Background(), dest, []string{good, bad}, LevelLight, ImageOptions{}, nil); err == nil {
		t.Fatal("expected error for malformed source")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("partial output left at destination")
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}

func TestUnifyGroupRecompressesLargeImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan.pdf")
	writeImagePDF(t, src, 200, 200)

	dest := filepath.Join(dir, "out", "scan.pdf")
	img := ImageOptions{Enabled: true, Quality: 70, MinKB: 64, OnlyIfSmaller: false}
	replaced, err := UnifyGroup(context.Background(), dest, []string{src}, LevelNone, img, nil)
	if err != nil {
		t.Fatalf("UnifyGroup: %v", err)
	}
	if replaced != 1 {
		t.Fatalf("replaced = %d, want 1", replaced)
	}

	pdfCtx, err := api.ReadContextFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	sd := findImageStream(t, pdfCtx)
	if name, _ := sd.Dict["Filter"].(types.Name); name.Value() != "DCTDecode" {
		t.Fatalf("filter = %v, want DCTDecode", sd.Dict["Filter"])
	}
	if w, h := dictInt(sd.Dict, "Width"), dictInt(sd.Dict, "Height"); w != 200 || h != 200 {
		t.Fatalf("dimensions changed to %dx%d", w, h)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(sd.Raw))
	if err != nil {
		t.Fatalf("decode replaced stream: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("replaced image is %dx%d, want 200x200", b.Dx(), b.Dy())
	}
}

func TestUnifyGroupMinKBGateSkipsImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan.pdf")
	writeImagePDF(t, src, 200, 200)

	dest := filepath.Join(dir, "out", "scan.pdf")
	img := ImageOptions{Enabled: true, Quality: 70, MinKB: 10 * 1024, OnlyIfSmaller: false}
	replaced, err := UnifyGroup(context.Background(), dest, []string{src}, LevelNone, img, nil)
	if err != nil {
		t.Fatalf("UnifyGroup: %v", err)
	}
	if replaced != 0 {
		t.Fatalf("replaced = %d, want 0 below the size gate", replaced)
	}

	pdfCtx, err := api.ReadContextFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	sd := findImageStream(t, pdfCtx)
	if name, _ := sd.Dict["Filter"].(types.Name); name.Value() != "FlateDecode" {
		t.Fatalf("filter = %v, want untouched FlateDecode", sd.Dict["Filter"])
	}
}
