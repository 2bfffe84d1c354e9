package mongoclient

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"golang.org/x/xerrors"
)

// MakeBsonM turns a selector struct into a filter. Nil pointers and zero
// fields are left out, non-nil pointers are dereferenced.
func MakeBsonM(selector interface{}) (bson.M, error) {
	val := reflect.Indirect(reflect.ValueOf(selector))
	if val.Kind() != reflect.Struct {
		return nil, xerrors.Errorf("selector must be a struct, got %s", val.Kind())
	}

	res := bson.M{}
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() || field.IsZero() {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(typ.Field(i))
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}
		if field.Kind() == reflect.Ptr {
			field = field.Elem()
		}
		res[tag.Name] = field.Interface()
	}
	return res, nil
}
