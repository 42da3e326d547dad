package classify

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
)

func argBig(args map[string]interface{}, name string) *big.Int {
	return asBigInt(args[name])
}

func argAddress(args map[string]interface{}, name string) (common.Address, bool) {
	return asAddress(args[name])
}

func asBigInt(value interface{}) *big.Int {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil
		}
		return new(big.Int).Set(v)
	case big.Int:
		return new(big.Int).Set(&v)
	case uint8:
		return new(big.Int).SetUint64(uint64(v))
	case uint16:
		return new(big.Int).SetUint64(uint64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	case uint64:
		return new(big.Int).SetUint64(v)
	case int32:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	default:
		return nil
	}
}

func asAddress(value interface{}) (common.Address, bool) {
	switch v := value.(type) {
	case common.Address:
		return v, true
	case *common.Address:
		if v == nil {
			return common.Address{}, false
		}
		return *v, true
	default:
		return common.Address{}, false
	}
}

// tupleField reads a field from an abi-unpacked tuple. Tuple values come
// back as anonymous structs with camel-cased field names.
func tupleField(value interface{}, name string) (interface{}, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	f := rv.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}
