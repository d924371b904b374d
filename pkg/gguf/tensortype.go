package gguf

import "fmt"

// TensorType is the ggml element type code of a tensor. The decoder keeps it
// opaque; names are for display only.
type TensorType uint32

const (
	GGMLTypeF32     TensorType = 0
	GGMLTypeF16     TensorType = 1
	GGMLTypeQ4_0    TensorType = 2
	GGMLTypeQ4_1    TensorType = 3
	GGMLTypeQ5_0    TensorType = 6
	GGMLTypeQ5_1    TensorType = 7
	GGMLTypeQ8_0    TensorType = 8
	GGMLTypeQ8_1    TensorType = 9
	GGMLTypeQ2_K    TensorType = 10
	GGMLTypeQ3_K    TensorType = 11
	GGMLTypeQ4_K    TensorType = 12
	GGMLTypeQ5_K    TensorType = 13
	GGMLTypeQ6_K    TensorType = 14
	GGMLTypeQ8_K    TensorType = 15
	GGMLTypeIQ2_XXS TensorType = 16
	GGMLTypeIQ2_XS  TensorType = 17
	GGMLTypeIQ3_XXS TensorType = 18
	GGMLTypeIQ1_S   TensorType = 19
	GGMLTypeIQ4_NL  TensorType = 20
	GGMLTypeIQ3_S   TensorType = 21
	GGMLTypeIQ2_S   TensorType = 22
	GGMLTypeIQ4_XS  TensorType = 23
	GGMLTypeI8      TensorType = 24
	GGMLTypeI16     TensorType = 25
	GGMLTypeI32     TensorType = 26
	GGMLTypeI64     TensorType = 27
	GGMLTypeF64     TensorType = 28
	GGMLTypeIQ1_M   TensorType = 29
	GGMLTypeBF16    TensorType = 30
)

var tensorTypeNames = map[TensorType]string{
	GGMLTypeF32:     "F32",
	GGMLTypeF16:     "F16",
	GGMLTypeQ4_0:    "Q4_0",
	GGMLTypeQ4_1:    "Q4_1",
	GGMLTypeQ5_0:    "Q5_0",
	GGMLTypeQ5_1:    "Q5_1",
	GGMLTypeQ8_0:    "Q8_0",
	GGMLTypeQ8_1:    "Q8_1",
	GGMLTypeQ2_K:    "Q2_K",
	GGMLTypeQ3_K:    "Q3_K",
	GGMLTypeQ4_K:    "Q4_K",
	GGMLTypeQ5_K:    "Q5_K",
	GGMLTypeQ6_K:    "Q6_K",
	GGMLTypeQ8_K:    "Q8_K",
	GGMLTypeIQ2_XXS: "IQ2_XXS",
	GGMLTypeIQ2_XS:  "IQ2_XS",
	GGMLTypeIQ3_XXS: "IQ3_XXS",
	GGMLTypeIQ1_S:   "IQ1_S",
	GGMLTypeIQ4_NL:  "IQ4_NL",
	GGMLTypeIQ3_S:   "IQ3_S",
	GGMLTypeIQ2_S:   "IQ2_S",
	GGMLTypeIQ4_XS:  "IQ4_XS",
	GGMLTypeI8:      "I8",
	GGMLTypeI16:     "I16",
	GGMLTypeI32:     "I32",
	GGMLTypeI64:     "I64",
	GGMLTypeF64:     "F64",
	GGMLTypeIQ1_M:   "IQ1_M",
	GGMLTypeBF16:    "BF16",
}

func (t TensorType) String() string {
	if name, ok := tensorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint32(t))
}
