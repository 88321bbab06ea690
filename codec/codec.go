package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

type CodecType byte

const (
	CodecType_Unknown CodecType = iota
	CodecType_JSON
	CodecType_RLP
)

type Marshaler interface {
	Marshal(interface{}) ([]byte, error)

	Unmarshal([]byte, interface{}) error
}

type Encoder interface {
	Encode(interface{}) error
	Reset(w io.Writer)
}

func CreateMarshaler(codecType CodecType) Marshaler {
	switch codecType {
	case CodecType_JSON:
		return &MarshalJson{}
	case CodecType_RLP:
		return &MarshalRlp{}
	default:
		panic(fmt.Errorf("invalid codec type %d when CreateMarshaler", codecType).Error())
	}
}

func CreateEncoder(codecType CodecType, w io.Writer) Encoder {
	switch codecType {
	case CodecType_JSON:
		return &EncoderJson{w: w, jsonEncoder: json.NewEncoder(w)}
	case CodecType_RLP:
		return &EncoderRlp{w: w}
	default:
		panic(fmt.Errorf("invalid codec type %d when CreateEncoder", codecType).Error())
	}
}

type MarshalJson struct{}

func (m *MarshalJson) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (m *MarshalJson) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type EncoderJson struct {
	w           io.Writer
	jsonEncoder *json.Encoder
}

func (e *EncoderJson) Encode(v interface{}) error {
	return e.jsonEncoder.Encode(v)
}

func (e *EncoderJson) Reset(w io.Writer) {
	e.w = w
	e.jsonEncoder = json.NewEncoder(w)
}

type MarshalRlp struct{}

func (m *MarshalRlp) Marshal(v interface{}) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

func (m *MarshalRlp) Unmarshal(data []byte, v interface{}) error {
	return rlp.DecodeBytes(data, v)
}

type EncoderRlp struct {
	w io.Writer
}

func (e *EncoderRlp) Encode(v interface{}) error {
	return rlp.Encode(e.w, v)
}

func (e *EncoderRlp) Reset(w io.Writer) {
	e.w = w
}
