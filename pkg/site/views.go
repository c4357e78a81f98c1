package site

import (
	"fmt"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/aretw0/humdrum/pkg/views"
	"github.com/mitchellh/mapstructure"
)

// View types understood by the builder.
const (
	TypeText     = "text"
	TypeMarkdown = "markdown"
	TypeJSON     = "json"
	TypeYAML     = "yaml"
	TypeStatus   = "status"
	TypeRedirect = "redirect"
	TypeForward  = "forward"
	TypeNop      = "nop"
)

type textOptions struct {
	Body string `mapstructure:"body"`
}

type markdownOptions struct {
	Body     string `mapstructure:"body"`
	Styled   *bool  `mapstructure:"styled"`
	WordWrap int    `mapstructure:"word_wrap"`
}

type dataOptions struct {
	Keys   []string `mapstructure:"keys"`
	Indent bool     `mapstructure:"indent"`
}

type statusOptions struct {
	Code int    `mapstructure:"code"`
	Body string `mapstructure:"body"`
}

type redirectOptions struct {
	Location string `mapstructure:"location"`
	Code     int    `mapstructure:"code"`
}

type forwardOptions struct {
	Target string `mapstructure:"target"`
}

func decodeOptions(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// buildView turns a spec into a view. lookup resolves forward targets.
func buildView(spec ViewSpec, lookup func(string) (*domain.Controller, bool)) (domain.View, error) {
	switch spec.Type {
	case TypeText:
		var o textOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		return views.NewText(o.Body), nil

	case TypeMarkdown:
		var o markdownOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		return &views.Markdown{Body: o.Body, Styled: o.Styled, WordWrap: o.WordWrap}, nil

	case TypeJSON:
		var o dataOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		return &views.JSON{Keys: o.Keys, Indent: o.Indent}, nil

	case TypeYAML:
		var o dataOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		return &views.YAML{Keys: o.Keys}, nil

	case TypeStatus:
		var o statusOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		if o.Code < 100 || o.Code > 599 {
			return nil, fmt.Errorf("status code %d out of range", o.Code)
		}
		return &views.Status{Code: o.Code, Body: o.Body}, nil

	case TypeRedirect:
		var o redirectOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		if o.Location == "" {
			return nil, fmt.Errorf("redirect needs a location")
		}
		return &views.Redirect{Location: o.Location, Code: o.Code}, nil

	case TypeForward:
		var o forwardOptions
		if err := decodeOptions(spec.Options, &o); err != nil {
			return nil, err
		}
		target, ok := lookup(o.Target)
		if !ok {
			return nil, fmt.Errorf("%w: forward target %q", ErrUnknownController, o.Target)
		}
		return mvc.Forward(target), nil

	case TypeNop:
		if len(spec.Options) > 0 {
			return nil, fmt.Errorf("nop view takes no options")
		}
		return mvc.Nop[*domain.Request, *domain.Model](), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownViewType, spec.Type)
}
