package checkpoints

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/tensor"
)

// Safetensors layout:
// [8 bytes: header size, uint64 little-endian]
// [header: JSON object name -> {dtype, shape, data_offsets}, plus __metadata__]
// [tensor data]

const maxSafetensorsHeader = 100 * 1024 * 1024

type safetensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// LoadSafetensors reads every tensor of a safetensors file and converts it
// to float32. F32, F64, F16, BF16, I32 and I64 tensors are supported.
func LoadSafetensors(path string) (map[string]*tensor.Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open weights file %s", path)
	}
	defer file.Close()

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, errors.Wrapf(err, "failed to read header size of %s", path)
	}
	if headerSize > maxSafetensorsHeader {
		return nil, errors.Errorf("invalid safetensors header size %d in %s", headerSize, path)
	}
	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, errors.Wrapf(err, "failed to read header of %s", path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse header of %s", path)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tensor data of %s", path)
	}

	out := make(map[string]*tensor.Tensor, len(raw))
	for name, msg := range raw {
		if name == "__metadata__" {
			continue
		}
		var info safetensorInfo
		if err := json.Unmarshal(msg, &info); err != nil {
			return nil, errors.Wrapf(err, "invalid header entry for tensor %s", name)
		}
		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start || end > int64(len(data)) {
			return nil, errors.Errorf("tensor %s has invalid data offsets [%d, %d]", name, start, end)
		}
		values, err := decodeSafetensor(info.DType, data[start:end])
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %s", name)
		}
		shape := info.Shape
		if len(shape) == 0 {
			shape = []int{1}
		}
		t, err := tensor.New(shape, values)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %s", name)
		}
		out[name] = t
	}
	return out, nil
}

func decodeSafetensor(dtype string, b []byte) ([]float32, error) {
	size := map[string]int{"F32": 4, "F64": 8, "F16": 2, "BF16": 2, "I32": 4, "I64": 8}[dtype]
	if size == 0 {
		return nil, errors.Errorf("unsupported dtype %s", dtype)
	}
	if len(b)%size != 0 {
		return nil, errors.Errorf("%d bytes is not a whole number of %s elements", len(b), dtype)
	}

	out := make([]float32, len(b)/size)
	for i := range out {
		chunk := b[i*size:]
		switch dtype {
		case "F32":
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(chunk))
		case "F64":
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(chunk)))
		case "F16":
			out[i] = halfToFloat32(binary.LittleEndian.Uint16(chunk))
		case "BF16":
			out[i] = math.Float32frombits(uint32(binary.LittleEndian.Uint16(chunk)) << 16)
		case "I32":
			out[i] = float32(int32(binary.LittleEndian.Uint32(chunk)))
		case "I64":
			out[i] = float32(int64(binary.LittleEndian.Uint64(chunk)))
		}
	}
	return out, nil
}

// halfToFloat32 converts an IEEE 754 binary16 value.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal
		v := float32(frac) / 1024 / 16384
		if sign != 0 {
			return -v
		}
		return v
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
	}
}

// SaveSafetensors writes tensors as F32 in name order.
func SaveSafetensors(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]interface{}, len(names)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}
	var offset int64
	for _, name := range names {
		t := tensors[name]
		size := int64(4 * len(t.Data))
		header[name] = safetensorInfo{
			DType:       "F32",
			Shape:       t.Shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal safetensors header")
	}

	buf := make([]byte, 8, 8+len(headerJSON)+int(offset))
	binary.LittleEndian.PutUint64(buf, uint64(len(headerJSON)))
	buf = append(buf, headerJSON...)
	for _, name := range names {
		for _, v := range tensors[name].Data {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
