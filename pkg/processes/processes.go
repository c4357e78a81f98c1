package processes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// decode copies site arguments into a typed options struct.
func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("missing %q", field)
	}
	return nil
}

// Always names view unconditionally.
func Always(view string) domain.Process {
	return domain.ProcessFunc(func(context.Context, *domain.Controller, *domain.Request, *domain.Model) (string, error) {
		return view, nil
	})
}

// RequireParam names view when the request lacks param or it is empty.
func RequireParam(param, view string) domain.Process {
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, req *domain.Request, _ *domain.Model) (string, error) {
		if v, ok := req.Param(param); !ok || v == "" {
			return view, nil
		}
		return "", nil
	})
}

// ParamEquals names view when param equals value.
func ParamEquals(param, value, view string) domain.Process {
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, req *domain.Request, _ *domain.Model) (string, error) {
		if v, ok := req.Param(param); ok && v == value {
			return view, nil
		}
		return "", nil
	})
}

// RequireSession names view when the model has no value under key.
func RequireSession(key, view string) domain.Process {
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, _ *domain.Request, m *domain.Model) (string, error) {
		if v, ok := m.Get(key); !ok || v == nil || v == "" {
			return view, nil
		}
		return "", nil
	})
}

// Set stores value under key in the model. It never decides.
func Set(key string, value any) domain.Process {
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, _ *domain.Request, m *domain.Model) (string, error) {
		m.Set(key, value)
		return "", nil
	})
}

// Unset removes key from the model. It never decides.
func Unset(key string) domain.Process {
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, _ *domain.Request, m *domain.Model) (string, error) {
		m.Delete(key)
		return "", nil
	})
}

// CopyParam copies a request parameter into the model. Missing parameters
// leave the model untouched. It never decides.
func CopyParam(param, key string) domain.Process {
	if key == "" {
		key = param
	}
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) (string, error) {
		if v, ok := req.Param(param); ok {
			m.Set(key, v)
		}
		return "", nil
	})
}

// Count increments an integer counter in the model. It never decides.
func Count(key string) domain.Process {
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, _ *domain.Request, m *domain.Model) (string, error) {
		v, _ := m.Get(key)
		n, err := toInt(v)
		if err != nil {
			return "", fmt.Errorf("counter %q: %w", key, err)
		}
		m.Set(key, n+1)
		return "", nil
	})
}

// toInt accepts the shapes a counter takes after a round trip through a store.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("not a number: %T", v)
}

// Register adds the built-in processes to r.
//
//	always          view
//	require_param   param, view
//	param_equals    param, value, view
//	require_session key, view
//	set             key, value
//	unset           key
//	copy_param      param, key (defaults to param)
//	count           key
func Register(r *registry.Registry) {
	r.Register("always", func(args map[string]any) (domain.Process, error) {
		var o struct{ View string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("view", o.View); err != nil {
			return nil, err
		}
		return Always(o.View), nil
	})
	r.Register("require_param", func(args map[string]any) (domain.Process, error) {
		var o struct{ Param, View string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("param", o.Param); err != nil {
			return nil, err
		}
		if err := required("view", o.View); err != nil {
			return nil, err
		}
		return RequireParam(o.Param, o.View), nil
	})
	r.Register("param_equals", func(args map[string]any) (domain.Process, error) {
		var o struct{ Param, Value, View string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("param", o.Param); err != nil {
			return nil, err
		}
		if err := required("view", o.View); err != nil {
			return nil, err
		}
		return ParamEquals(o.Param, o.Value, o.View), nil
	})
	r.Register("require_session", func(args map[string]any) (domain.Process, error) {
		var o struct{ Key, View string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("key", o.Key); err != nil {
			return nil, err
		}
		if err := required("view", o.View); err != nil {
			return nil, err
		}
		return RequireSession(o.Key, o.View), nil
	})
	r.Register("set", func(args map[string]any) (domain.Process, error) {
		var o struct {
			Key   string
			Value any
		}
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("key", o.Key); err != nil {
			return nil, err
		}
		return Set(o.Key, o.Value), nil
	})
	r.Register("unset", func(args map[string]any) (domain.Process, error) {
		var o struct{ Key string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("key", o.Key); err != nil {
			return nil, err
		}
		return Unset(o.Key), nil
	})
	r.Register("copy_param", func(args map[string]any) (domain.Process, error) {
		var o struct{ Param, Key string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("param", o.Param); err != nil {
			return nil, err
		}
		return CopyParam(o.Param, o.Key), nil
	})
	r.Register("count", func(args map[string]any) (domain.Process, error) {
		var o struct{ Key string }
		if err := decode(args, &o); err != nil {
			return nil, err
		}
		if err := required("key", o.Key); err != nil {
			return nil, err
		}
		return Count(o.Key), nil
	})
}

// NewRegistry returns a registry preloaded with the built-in processes.
func NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	Register(r)
	return r
}
