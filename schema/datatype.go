package schema

// DataType identifies the declared wire type of a field.
//
// The set is closed: every codec switch over DataType is exhaustive and a
// new wire type cannot be added without updating them.
type DataType uint8

const (
	DataTypeInvalid DataType = iota
	DataTypeBool
	DataTypeInt8
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeFloat
	DataTypeDouble
	DataTypeVarChar
	DataTypeText
	DataTypeJSON
	DataTypeTimestamp
	DataTypeFloatVector
	DataTypeBinaryVector
	DataTypeFloat16Vector
	DataTypeBFloat16Vector
	DataTypeInt8Vector
	DataTypeSparseFloatVector
	DataTypeArrayOfStruct
)

// String returns the string representation of the DataType.
func (t DataType) String() string {
	switch t {
	case DataTypeBool:
		return "Bool"
	case DataTypeInt8:
		return "Int8"
	case DataTypeInt16:
		return "Int16"
	case DataTypeInt32:
		return "Int32"
	case DataTypeInt64:
		return "Int64"
	case DataTypeFloat:
		return "Float"
	case DataTypeDouble:
		return "Double"
	case DataTypeVarChar:
		return "VarChar"
	case DataTypeText:
		return "Text"
	case DataTypeJSON:
		return "JSON"
	case DataTypeTimestamp:
		return "Timestamp"
	case DataTypeFloatVector:
		return "FloatVector"
	case DataTypeBinaryVector:
		return "BinaryVector"
	case DataTypeFloat16Vector:
		return "Float16Vector"
	case DataTypeBFloat16Vector:
		return "BFloat16Vector"
	case DataTypeInt8Vector:
		return "Int8Vector"
	case DataTypeSparseFloatVector:
		return "SparseFloatVector"
	case DataTypeArrayOfStruct:
		return "ArrayOfStruct"
	default:
		return "Invalid"
	}
}

// IsVector reports whether t is any vector type, sparse included.
func (t DataType) IsVector() bool {
	switch t {
	case DataTypeFloatVector, DataTypeBinaryVector, DataTypeFloat16Vector,
		DataTypeBFloat16Vector, DataTypeInt8Vector, DataTypeSparseFloatVector:
		return true
	default:
		return false
	}
}

// IsDense reports whether t is a fixed-dimension vector type. Dense types
// require a positive Dim on the field descriptor.
func (t DataType) IsDense() bool {
	return t.IsVector() && t != DataTypeSparseFloatVector
}

// IsString reports whether t is a string-like scalar type.
func (t DataType) IsString() bool {
	return t == DataTypeVarChar || t == DataTypeText
}
