// Package mnist loads the MNIST handwritten digit dataset from its idx.gz files
package mnist

import "bytes"
import "compress/gzip"
import "crypto/sha256"
import "encoding/binary"
import "fmt"
import "io"
import "os"
import "path/filepath"

import "github.com/pkg/errors"

// ErrChecksum is returned when a dataset file does not have the published digest.
var ErrChecksum = errors.New("mnist file checksum mismatch")

const inferSetImg = "t10k-images-idx3-ubyte.gz"
const inferSetVal = "t10k-labels-idx1-ubyte.gz"
const trainSetImg = "train-images-idx3-ubyte.gz"
const trainSetVal = "train-labels-idx1-ubyte.gz"

var digests = map[string]string{
	inferSetImg: "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	inferSetVal: "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
	trainSetImg: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	trainSetVal: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
}

const imagesMagic = 2051
const labelsMagic = 2049

// ImgSize is the image side in pixels.
const ImgSize = 28

// Image is one row-major grayscale digit.
type Image [ImgSize * ImgSize]byte

// Set is a labelled image set. It implements datasets.Samples.
type Set struct {
	Images []Image
	Labels []byte
}

// Len returns the number of images.
func (s *Set) Len() int {
	return len(s.Labels)
}

// Dim returns the flattened image size.
func (s *Set) Dim() int {
	return ImgSize * ImgSize
}

// Sample writes image n normalized to [-1, 1] into dst and returns its digit.
func (s *Set) Sample(n int, dst []float64) int {
	for i, px := range s.Images[n] {
		dst[i] = (float64(px)/255 - 0.5) / 0.5
	}
	return int(s.Labels[n])
}

// DefaultDirectories are searched by New when no directory is given.
func DefaultDirectories() []string {
	var dirs = []string{"/tmp/mnist/", "./data/mnist/"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".cache", "mnist"))
	}
	return dirs
}

// New loads the train and test sets from the first directory holding all four
// verified files.
func New(dirs ...string) (train, test *Set, err error) {
	if len(dirs) == 0 {
		dirs = DefaultDirectories()
	}
	err = errors.New("no mnist directory given")
	for _, dir := range dirs {
		train, test, err = Load(dir, true)
		if err == nil {
			return train, test, nil
		}
	}
	return nil, nil, err
}

// Load reads the four dataset files from dir, optionally checking their sha256 digests.
func Load(dir string, verify bool) (train, test *Set, err error) {
	train, err = loadPair(dir, trainSetImg, trainSetVal, verify)
	if err != nil {
		return nil, nil, err
	}
	test, err = loadPair(dir, inferSetImg, inferSetVal, verify)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func loadPair(dir, img, val string, verify bool) (*Set, error) {
	imgData, err := readFile(filepath.Join(dir, img), digests[img], verify)
	if err != nil {
		return nil, err
	}
	valData, err := readFile(filepath.Join(dir, val), digests[val], verify)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(imgData), bytes.NewReader(valData))
}

func readFile(name, digest string, verify bool) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read mnist file '%s'", name)
	}
	if verify {
		if sum := fmt.Sprintf("%x", sha256.Sum256(data)); sum != digest {
			return nil, errors.Wrapf(ErrChecksum, "file '%s' has digest %s", name, sum)
		}
	}
	return data, nil
}

// Parse decodes gzipped idx3 images and idx1 labels.
func Parse(images, labels io.Reader) (*Set, error) {
	imgData, err := gunzip(images)
	if err != nil {
		return nil, errors.Wrap(err, "images")
	}
	valData, err := gunzip(labels)
	if err != nil {
		return nil, errors.Wrap(err, "labels")
	}
	if len(imgData) < 16 || binary.BigEndian.Uint32(imgData) != imagesMagic {
		return nil, errors.New("bad idx3 images header")
	}
	if len(valData) < 8 || binary.BigEndian.Uint32(valData) != labelsMagic {
		return nil, errors.New("bad idx1 labels header")
	}
	count := int(binary.BigEndian.Uint32(imgData[4:]))
	rows := int(binary.BigEndian.Uint32(imgData[8:]))
	cols := int(binary.BigEndian.Uint32(imgData[12:]))
	if rows != ImgSize || cols != ImgSize {
		return nil, errors.Errorf("images are %dx%d, want %dx%d", rows, cols, ImgSize, ImgSize)
	}
	// skip headers
	imgData, valData = imgData[16:], valData[8:]
	if len(imgData) < count*ImgSize*ImgSize {
		return nil, errors.Errorf("truncated images: %d bytes for %d images", len(imgData), count)
	}
	if len(valData) != count {
		return nil, errors.Errorf("%d labels for %d images", len(valData), count)
	}
	var set = &Set{Images: make([]Image, count), Labels: valData}
	for i := range set.Images {
		copy(set.Images[i][:], imgData[i*ImgSize*ImgSize:])
	}
	return set, nil
}

func gunzip(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
