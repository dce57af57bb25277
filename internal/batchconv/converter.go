// Package batchconv maps client-side objects onto the gRPC batch ingestion
// messages. Property maps are split into typed buckets: plain scalars go into
// a protobuf Struct, homogeneous arrays and nested objects get their own lists.
//
// Conversion never fails. Values whose Go type has no bucket are dropped, as
// are the server-managed timestamp keys.
package batchconv

import (
	"encoding/binary"
	"math"

	"github.com/weaviate/weaviate/entities/models"
	pb "github.com/weaviate/weaviate/grpc/generated/protocol/v1"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server-managed metadata keys that are never sent back.
const (
	KeyCreationTimeUnix   = "_creationTimeUnix"
	KeyLastUpdateTimeUnix = "_lastUpdateTimeUnix"
)

// Properties is the seven-bucket partition of one property map.
type Properties struct {
	NonRef       map[string]*structpb.Value
	NumberArrays []*pb.NumberArrayProperties
	IntArrays    []*pb.IntArrayProperties
	TextArrays   []*pb.TextArrayProperties
	BoolArrays   []*pb.BooleanArrayProperties
	Objects      []*pb.ObjectProperties
	ObjectArrays []*pb.ObjectArrayProperties
}

// ToBatchObject converts obj into its batch wire form. Empty id, class,
// tenant and vector are left unset.
func ToBatchObject(obj *models.Object) *pb.BatchObject {
	if obj == nil {
		return nil
	}
	out := &pb.BatchObject{}
	if obj.ID != "" {
		out.Uuid = string(obj.ID)
	}
	if obj.Class != "" {
		out.Collection = obj.Class
	}
	if len(obj.Vector) > 0 {
		out.VectorBytes = VectorBytes(obj.Vector)
	}
	if obj.Tenant != "" {
		out.Tenant = obj.Tenant
	}
	if props, ok := obj.Properties.(map[string]interface{}); ok {
		out.Properties = Extract(props).BatchProperties()
	}
	return out
}

// Extract partitions props into typed buckets, recursing into nested maps.
func Extract(props map[string]interface{}) *Properties {
	p := &Properties{NonRef: make(map[string]*structpb.Value)}
	for name, value := range props {
		if name == KeyCreationTimeUnix || name == KeyLastUpdateTimeUnix {
			continue
		}
		p.add(name, value)
	}
	return p
}

func (p *Properties) add(name string, value interface{}) {
	switch v := value.(type) {
	case string:
		p.NonRef[name] = structpb.NewStringValue(v)
	case bool:
		p.NonRef[name] = structpb.NewBoolValue(v)
	case int:
		p.NonRef[name] = structpb.NewNumberValue(float64(v))
	case int32:
		p.NonRef[name] = structpb.NewNumberValue(float64(v))
	case int64:
		p.NonRef[name] = structpb.NewNumberValue(float64(v))
	case float32:
		p.NonRef[name] = structpb.NewNumberValue(float64(v))
	case float64:
		p.NonRef[name] = structpb.NewNumberValue(v)
	case []string:
		p.TextArrays = append(p.TextArrays, &pb.TextArrayProperties{PropName: name, Values: v})
	case []bool:
		p.BoolArrays = append(p.BoolArrays, &pb.BooleanArrayProperties{PropName: name, Values: v})
	case []int:
		values := make([]int64, len(v))
		for i, n := range v {
			values[i] = int64(n)
		}
		p.IntArrays = append(p.IntArrays, &pb.IntArrayProperties{PropName: name, Values: values})
	case []int32:
		values := make([]int64, len(v))
		for i, n := range v {
			values[i] = int64(n)
		}
		p.IntArrays = append(p.IntArrays, &pb.IntArrayProperties{PropName: name, Values: values})
	case []int64:
		p.IntArrays = append(p.IntArrays, &pb.IntArrayProperties{PropName: name, Values: v})
	case []float32:
		values := make([]float64, len(v))
		for i, f := range v {
			values[i] = float64(f)
		}
		p.NumberArrays = append(p.NumberArrays, &pb.NumberArrayProperties{PropName: name, Values: values})
	case []float64:
		p.NumberArrays = append(p.NumberArrays, &pb.NumberArrayProperties{PropName: name, Values: v})
	case map[string]interface{}:
		p.Objects = append(p.Objects, &pb.ObjectProperties{PropName: name, Value: Extract(v).ObjectValue()})
	case []map[string]interface{}:
		values := make([]*pb.ObjectPropertiesValue, 0, len(v))
		for _, m := range v {
			values = append(values, Extract(m).ObjectValue())
		}
		p.ObjectArrays = append(p.ObjectArrays, &pb.ObjectArrayProperties{PropName: name, Values: values})
	case []interface{}:
		// only map elements are kept; anything else in the list is skipped
		values := make([]*pb.ObjectPropertiesValue, 0, len(v))
		for _, elem := range v {
			if m, ok := elem.(map[string]interface{}); ok {
				values = append(values, Extract(m).ObjectValue())
			}
		}
		p.ObjectArrays = append(p.ObjectArrays, &pb.ObjectArrayProperties{PropName: name, Values: values})
	}
}

// BatchProperties renders the buckets as top-level batch object properties.
// NonRefProperties is always set, even when empty.
func (p *Properties) BatchProperties() *pb.BatchObject_Properties {
	return &pb.BatchObject_Properties{
		NonRefProperties:       &structpb.Struct{Fields: p.NonRef},
		NumberArrayProperties:  p.NumberArrays,
		IntArrayProperties:     p.IntArrays,
		TextArrayProperties:    p.TextArrays,
		BooleanArrayProperties: p.BoolArrays,
		ObjectProperties:       p.Objects,
		ObjectArrayProperties:  p.ObjectArrays,
	}
}

// ObjectValue renders the buckets as a nested object value.
func (p *Properties) ObjectValue() *pb.ObjectPropertiesValue {
	return &pb.ObjectPropertiesValue{
		NonRefProperties:       &structpb.Struct{Fields: p.NonRef},
		NumberArrayProperties:  p.NumberArrays,
		IntArrayProperties:     p.IntArrays,
		TextArrayProperties:    p.TextArrays,
		BooleanArrayProperties: p.BoolArrays,
		ObjectProperties:       p.Objects,
		ObjectArrayProperties:  p.ObjectArrays,
	}
}

// VectorBytes encodes a vector as little-endian float32s.
func VectorBytes(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, f := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
