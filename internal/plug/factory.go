package plug

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrFactoryTypeMismatch is returned by a Factory-guarded recipe whose
	// inner recipe produced a value of the wrong type.
	ErrFactoryTypeMismatch = errors.New("plug: factory type mismatch")
	// ErrFactoryNoInstance is returned by a Factory-guarded recipe whose
	// inner recipe produced no instance at all.
	ErrFactoryNoInstance = errors.New("plug: factory returned no instance")
)

// Factory wraps an untyped recipe with a result guard: the recipe must
// produce a non-nil value assignable to T. Use it when the recipe delegates
// to code outside the caller's control.
func Factory[T any](recipe Recipe) Recipe {
	if recipe == nil {
		panic("plug: nil recipe")
	}
	return func(ctx context.Context) (any, error) {
		value, err := recipe(ctx)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, ErrFactoryNoInstance
		}

		typed, ok := value.(T)
		if !ok {
			var want T
			return nil, fmt.Errorf("%w: want %T, got %T", ErrFactoryTypeMismatch, want, value)
		}

		// A typed nil pointer passes the assertion but is still no instance.
		if rv := reflect.ValueOf(typed); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, ErrFactoryNoInstance
		}
		return typed, nil
	}
}
