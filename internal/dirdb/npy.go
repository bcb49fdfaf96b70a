// Reads and writes payload arrays in the NumPy .npy format (version 1.0 on
// write; 1.x, 2.x and 3.x headers on read).

package dirdb

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

var errBadNpy = errors.New("not a valid npy payload")

// writeNpy writes data as a little-endian float64 1-D array.
func writeNpy(w io.Writer, data []float64) error {
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d,), }", len(data))
	// magic(6) + version(2) + header length(2) + header, padded with spaces and
	// terminated by '\n' to a multiple of 64 bytes.
	total := len(npyMagic) + 4 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("npy header too long")
	}

	bw := bufio.NewWriter(w)
	_, _ = bw.Write(npyMagic)
	_, _ = bw.Write([]byte{1, 0})
	var hl [2]byte
	binary.LittleEndian.PutUint16(hl[:], uint16(len(header)))
	_, _ = bw.Write(hl[:])
	_, _ = bw.WriteString(header)
	var b [8]byte
	for _, v := range data {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// readNpy reads a numeric array of any shape, flattened in C order, as float64.
// total is the size of the payload in bytes; the header must not claim more.
func readNpy(r io.Reader, total int64) ([]float64, error) {
	br := bufio.NewReader(r)
	var pre [8]byte
	if _, err := io.ReadFull(br, pre[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadNpy, err)
	}
	if !bytes.Equal(pre[:6], npyMagic) {
		return nil, fmt.Errorf("%w: bad magic", errBadNpy)
	}
	var hlen int
	switch pre[6] {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadNpy, err)
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadNpy, err)
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
	default:
		return nil, fmt.Errorf("%w: unsupported version %d.%d", errBadNpy, pre[6], pre[7])
	}
	remaining := total - 8
	if pre[6] == 1 {
		remaining -= 2
	} else {
		remaining -= 4
	}
	if int64(hlen) > remaining {
		return nil, fmt.Errorf("%w: header length %d exceeds payload size", errBadNpy, hlen)
	}
	remaining -= int64(hlen)
	hdr := make([]byte, hlen)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadNpy, err)
	}
	descr, fortran, shape, err := parseNpyHeader(string(hdr))
	if err != nil {
		return nil, err
	}
	if fortran && len(shape) > 1 {
		return nil, fmt.Errorf("%w: fortran order is not supported", errBadNpy)
	}
	size, order, conv, err := npyDecoder(descr)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, d := range shape {
		if d != 0 && n > math.MaxInt/d {
			return nil, fmt.Errorf("%w: shape %v overflows", errBadNpy, shape)
		}
		n *= d
	}
	if int64(n) > remaining/int64(size) {
		return nil, fmt.Errorf("%w: shape %v needs more than the %d bytes of data", errBadNpy, shape, remaining)
	}
	out := make([]float64, n)
	buf := make([]byte, size)
	for i := range out {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: truncated data: %w", errBadNpy, err)
		}
		out[i] = conv(order, buf)
	}
	return out, nil
}

// parseNpyHeader extracts the fields of the python dict literal header.
func parseNpyHeader(h string) (descr string, fortran bool, shape []int, err error) {
	h = strings.TrimSpace(h)
	if !strings.HasPrefix(h, "{") || !strings.HasSuffix(h, "}") {
		return "", false, nil, fmt.Errorf("%w: header is not a dict", errBadNpy)
	}
	value := func(key string) (string, bool) {
		i := strings.Index(h, "'"+key+"'")
		if i < 0 {
			return "", false
		}
		rest := strings.TrimSpace(h[i+len(key)+2:])
		rest, ok := strings.CutPrefix(rest, ":")
		return strings.TrimSpace(rest), ok
	}
	v, ok := value("descr")
	if !ok || len(v) < 2 || v[0] != '\'' {
		return "", false, nil, fmt.Errorf("%w: missing descr", errBadNpy)
	}
	end := strings.IndexByte(v[1:], '\'')
	if end < 0 {
		return "", false, nil, fmt.Errorf("%w: bad descr", errBadNpy)
	}
	descr = v[1 : end+1]
	if v, ok = value("fortran_order"); ok {
		fortran = strings.HasPrefix(v, "True")
	}
	v, ok = value("shape")
	if !ok || !strings.HasPrefix(v, "(") {
		return "", false, nil, fmt.Errorf("%w: missing shape", errBadNpy)
	}
	end = strings.IndexByte(v, ')')
	if end < 0 {
		return "", false, nil, fmt.Errorf("%w: bad shape", errBadNpy)
	}
	shape = []int{}
	for _, p := range strings.Split(v[1:end], ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSuffix(p, "L"))
		if err != nil || d < 0 {
			return "", false, nil, fmt.Errorf("%w: bad shape %q", errBadNpy, v[:end+1])
		}
		shape = append(shape, d)
	}
	return descr, fortran, shape, nil
}

type npyConv func(order binary.ByteOrder, b []byte) float64

// npyDecoder maps a dtype descriptor to element size, byte order and converter.
func npyDecoder(descr string) (int, binary.ByteOrder, npyConv, error) {
	if len(descr) < 3 {
		return 0, nil, nil, fmt.Errorf("%w: unsupported dtype %q", errBadNpy, descr)
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch descr[0] {
	case '<', '|', '=':
	case '>':
		order = binary.BigEndian
	default:
		return 0, nil, nil, fmt.Errorf("%w: unsupported dtype %q", errBadNpy, descr)
	}
	switch descr[1:] {
	case "f8":
		return 8, order, func(o binary.ByteOrder, b []byte) float64 { return math.Float64frombits(o.Uint64(b)) }, nil
	case "f4":
		return 4, order, func(o binary.ByteOrder, b []byte) float64 { return float64(math.Float32frombits(o.Uint32(b))) }, nil
	case "i8":
		return 8, order, func(o binary.ByteOrder, b []byte) float64 { return float64(int64(o.Uint64(b))) }, nil
	case "i4":
		return 4, order, func(o binary.ByteOrder, b []byte) float64 { return float64(int32(o.Uint32(b))) }, nil
	case "u1":
		return 1, order, func(_ binary.ByteOrder, b []byte) float64 { return float64(b[0]) }, nil
	case "b1":
		return 1, order, func(_ binary.ByteOrder, b []byte) float64 {
			if b[0] != 0 {
				return 1
			}
			return 0
		}, nil
	default:
		return 0, nil, nil, fmt.Errorf("%w: unsupported dtype %q", errBadNpy, descr)
	}
}
