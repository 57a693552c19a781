package mnist

import "bytes"
import "compress/gzip"
import "encoding/binary"
import "os"
import "path/filepath"
import "testing"

import "github.com/pkg/errors"

func gz(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func idx(n int) (images, labels []byte) {
	images = make([]byte, 16, 16+n*ImgSize*ImgSize)
	binary.BigEndian.PutUint32(images[0:], imagesMagic)
	binary.BigEndian.PutUint32(images[4:], uint32(n))
	binary.BigEndian.PutUint32(images[8:], ImgSize)
	binary.BigEndian.PutUint32(images[12:], ImgSize)
	labels = make([]byte, 8, 8+n)
	binary.BigEndian.PutUint32(labels[0:], labelsMagic)
	binary.BigEndian.PutUint32(labels[4:], uint32(n))
	for i := 0; i < n; i++ {
		var img Image
		img[i] = 255
		images = append(images, img[:]...)
		labels = append(labels, byte(i%10))
	}
	return
}

func TestParse(t *testing.T) {
	images, labels := idx(3)
	set, err := Parse(bytes.NewReader(gz(t, images)), bytes.NewReader(gz(t, labels)))
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 || set.Dim() != 784 {
		t.Fatalf("bad set %d %d", set.Len(), set.Dim())
	}
	var dst = make([]float64, set.Dim())
	if y := set.Sample(2, dst); y != 2 {
		t.Errorf("label %d", y)
	}
	if dst[2] != 1 || dst[0] != -1 {
		t.Errorf("bad normalization %v %v", dst[2], dst[0])
	}
}

func TestParseBadHeader(t *testing.T) {
	images, labels := idx(1)
	if _, err := Parse(bytes.NewReader(gz(t, labels)), bytes.NewReader(gz(t, images))); err == nil {
		t.Error("swapped files should fail")
	}
	if _, err := Parse(bytes.NewReader(images), bytes.NewReader(labels)); err == nil {
		t.Error("uncompressed files should fail")
	}
}

func TestLoadChecksum(t *testing.T) {
	dir := t.TempDir()
	images, labels := idx(2)
	for name, data := range map[string][]byte{
		trainSetImg: images, trainSetVal: labels,
		inferSetImg: images, inferSetVal: labels,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), gz(t, data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	train, test, err := Load(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if train.Len() != 2 || test.Len() != 2 {
		t.Errorf("bad sizes %d %d", train.Len(), test.Len())
	}
	if _, _, err := New(dir); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected checksum error, got %v", err)
	}
}
