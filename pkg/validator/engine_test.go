package validator_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/notify"
	"github.com/dmitrymomot/entityvalidate/pkg/property"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

var articleFields = []validator.FieldSpec{
	{Name: "title", Required: true, Validators: []string{validator.RuleIsText}},
	{Name: "body", Required: true},
	{Name: "year", Validators: []string{validator.RuleIsYear}},
}

func TestEngine_Validate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid record", func(t *testing.T) {
		e := newEngine(articleFields)
		ok, err := e.Validate(ctx, map[string]any{"title": "Hello", "body": "World", "year": 2024}, false)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, e.Errors())
		assert.Empty(t, e.SquashedErrors())
		assert.Equal(t, validator.StateValid, e.LastOutcome())
		assert.Equal(t, validator.StateIdle, e.State())
	})

	t.Run("missing required field", func(t *testing.T) {
		e := newEngine(articleFields)
		ok, err := e.Validate(ctx, map[string]any{"body": "World"}, false)

		assert.False(t, ok)
		require.ErrorIs(t, err, validator.ErrValidationFailed)
		failed := validator.ExtractFailed(err)
		require.NotNil(t, failed)
		assert.Len(t, failed.Errors, 1)
		assert.Equal(t, "node", failed.EntityType)
		assert.Equal(t, "article", failed.Bundle)
		assert.Equal(t, "The field title cannot be empty.", failed.Squashed)
		assert.Equal(t, "The validation process failed: The field title cannot be empty.", err.Error())
		assert.Equal(t, []string{validator.MsgCannotBeEmpty}, messages(e, "title"))
		assert.Equal(t, validator.StateInvalidRaised, e.LastOutcome())
	})

	t.Run("every field is checked", func(t *testing.T) {
		e := newEngine(articleFields)
		ok, err := e.Validate(ctx, map[string]any{"year": "99"}, true)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t,
			"The field title cannot be empty."+validator.Separator+
				"The field body cannot be empty."+validator.Separator+
				"The value 99 of the field year is not a valid year.",
			e.SquashedErrors(),
		)
		assert.Equal(t, validator.StateInvalidSilent, e.LastOutcome())
	})

	t.Run("errors do not leak between calls", func(t *testing.T) {
		e := newEngine(articleFields)
		ok, _ := e.Validate(ctx, map[string]any{}, true)
		require.False(t, ok)
		require.NotEmpty(t, e.Errors())

		ok, err := e.Validate(ctx, map[string]any{"title": "a", "body": "b"}, true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, e.Errors())
	})

	t.Run("clear errors", func(t *testing.T) {
		e := newEngine(articleFields)
		_, _ = e.Validate(ctx, map[string]any{}, true)
		e.ClearErrors()
		assert.Empty(t, e.Errors())
	})

	t.Run("struct record", func(t *testing.T) {
		type article struct {
			Title string `field:"title"`
			Body  string `field:"body"`
			Year  int    `field:"year"`
		}
		e := newEngine(articleFields)

		ok, err := e.Validate(ctx, &article{Title: "a", Body: "b", Year: 1999}, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("property name differs from field name", func(t *testing.T) {
		e := newEngine([]validator.FieldSpec{{Name: "title", Property: "label", Required: true}})

		ok, err := e.Validate(ctx, map[string]any{"label": "x"}, true)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = e.Validate(ctx, map[string]any{"title": "x"}, true)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, e.Errors()["title"] != nil)
	})

	t.Run("repeated rule fires every time", func(t *testing.T) {
		e := newEngine([]validator.FieldSpec{{
			Name:       "t",
			Validators: []string{validator.RuleIsNotEmpty, validator.RuleIsNotEmpty},
		}})

		ok, err := e.Validate(ctx, map[string]any{"t": ""}, true)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Len(t, e.Errors()["t"], 2)
	})

	t.Run("context cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		e := newEngine(articleFields)

		ok, err := e.Validate(cctx, map[string]any{}, true)
		assert.False(t, ok)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, validator.StateError, e.LastOutcome())
	})
}

func TestEngine_TypeCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	specs := []validator.FieldSpec{{Name: "count", Type: "integer"}}

	t.Run("conforming value", func(t *testing.T) {
		e := newEngine(specs)
		ok, err := e.Validate(ctx, map[string]any{"count": 3}, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("empty value is not checked", func(t *testing.T) {
		e := newEngine(specs)
		ok, err := e.Validate(ctx, map[string]any{"count": ""}, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("invalid value", func(t *testing.T) {
		e := newEngine(specs)
		ok, err := e.Validate(ctx, map[string]any{"count": "abc"}, true)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "The value abc is invalid for the field count.", e.SquashedErrors())
	})

	t.Run("custom checker", func(t *testing.T) {
		checker := validator.TypeCheckerFunc(func(value any, td validator.TypeDescriptor) bool {
			return td == "integer" && value == "forty-two"
		})
		e := newEngine(specs, validator.WithTypeChecker(checker))
		ok, err := e.Validate(ctx, map[string]any{"count": "forty-two"}, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing checker", func(t *testing.T) {
		e := validator.New(
			validator.WithMetadata(fields(specs...)),
			validator.WithProperties(property.New()),
			validator.WithEntityType("node"),
		)
		_, err := e.Validate(ctx, map[string]any{"count": 1}, true)
		assert.ErrorIs(t, err, validator.ErrMissingTypeChecker)
	})
}

func TestEngine_Policies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("raise stops at the first violation", func(t *testing.T) {
		var calls int
		reg := validator.NewRegistry()
		reg.MustRegisterValidator("track", func(*validator.Field, any) { calls++ })

		e := newEngine([]validator.FieldSpec{
			{Name: "title", Required: true, Validators: []string{"track"}},
			{Name: "body", Validators: []string{"track"}},
		}, validator.WithRegistry(reg), validator.WithErrorLevel(validator.LevelRaise))

		ok, err := e.Validate(ctx, map[string]any{}, true)
		assert.False(t, ok)
		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.Zero(t, calls)
		assert.Len(t, validator.ExtractFailed(err).Errors, 1)
		assert.Equal(t, validator.StateInvalidRaised, e.LastOutcome())
	})

	t.Run("raise stops inside a rule", func(t *testing.T) {
		e := newEngine([]validator.FieldSpec{{
			Name:       "image",
			Validators: []string{validator.RuleValidateImageField},
			Settings:   map[string]string{validator.SettingMaxResolution: "1x1"},
		}}, validator.WithErrorLevel(validator.LevelRaise))

		_, err := e.Validate(ctx, map[string]any{"image": validator.Image{Width: 5, Height: 5}}, false)
		failed := validator.ExtractFailed(err)
		require.NotNil(t, failed)
		assert.Len(t, failed.Errors, 1)
	})

	t.Run("raise with valid record", func(t *testing.T) {
		e := newEngine(articleFields, validator.WithErrorLevel(validator.LevelRaise))
		ok, err := e.Validate(ctx, map[string]any{"title": "a", "body": "b"}, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("emit sends every violation and reports valid", func(t *testing.T) {
		for name, opts := range map[string]func(validator.Emitter) []validator.Option{
			"emitter first": func(em validator.Emitter) []validator.Option {
				return []validator.Option{validator.WithEmitter(em), validator.WithErrorLevel(validator.LevelEmit)}
			},
			"level first": func(em validator.Emitter) []validator.Option {
				return []validator.Option{validator.WithErrorLevel(validator.LevelEmit), validator.WithEmitter(em)}
			},
		} {
			t.Run(name, func(t *testing.T) {
				mem := notify.NewMemory()
				e := newEngine(articleFields, opts(mem)...)

				ok, err := e.Validate(ctx, map[string]any{}, false)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Empty(t, e.Errors())
				require.Len(t, mem.Messages(), 2)
				assert.Equal(t, "The field title cannot be empty.", mem.Messages()[0].Text)
				assert.Equal(t, validator.StateValid, e.LastOutcome())
			})
		}
	})

	t.Run("emit without emitter", func(t *testing.T) {
		e := newEngine(articleFields, validator.WithErrorLevel(validator.LevelEmit))
		_, err := e.Validate(ctx, map[string]any{}, false)
		assert.ErrorIs(t, err, validator.ErrMissingEmitter)
	})

	t.Run("set error level", func(t *testing.T) {
		e := newEngine(articleFields)
		assert.ErrorIs(t, e.SetErrorLevel(validator.LevelEmit), validator.ErrMissingEmitter)
		assert.ErrorIs(t, e.SetErrorLevel(validator.Level(9)), validator.ErrInvalidErrorLevel)
		require.NoError(t, e.SetErrorLevel(validator.LevelRaise))

		_, err := e.Validate(ctx, map[string]any{}, true)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("custom policy", func(t *testing.T) {
		var seen []string
		e := newEngine(articleFields).SetPolicy(validator.PolicyFunc(
			func(_ context.Context, c *validator.Collector, v validator.ValidationError) error {
				seen = append(seen, v.Field)
				if v.Field == "title" {
					return nil
				}
				c.Add(v)
				return nil
			},
		))

		ok, err := e.Validate(ctx, map[string]any{}, true)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []string{"title", "body"}, seen)
		assert.Equal(t, []string{"body"}, sortedKeys(e.Errors()))
	})

	t.Run("config", func(t *testing.T) {
		cfg := validator.Config{EntityType: "user", Bundle: "user", ErrorLevel: 2}
		require.NoError(t, cfg.Validate())
		assert.ErrorIs(t, validator.Config{ErrorLevel: 3}.Validate(), validator.ErrInvalidErrorLevel)

		e := newEngine(articleFields, validator.WithConfig(cfg))
		assert.Equal(t, "user", e.EntityType())
		assert.Equal(t, "user", e.Bundle())

		_, err := e.Validate(ctx, map[string]any{}, true)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("config keeps an explicit policy", func(t *testing.T) {
		cfg := validator.Config{EntityType: "node"}

		e := newEngine(articleFields, validator.WithPolicy(validator.Raise{}), validator.WithConfig(cfg))
		_, err := e.Validate(ctx, map[string]any{}, true)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.Len(t, validator.ExtractFailed(err).Errors, 1)

		e = newEngine(articleFields, validator.WithErrorLevel(validator.LevelRaise), validator.WithConfig(cfg))
		_, err = e.Validate(ctx, map[string]any{}, true)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)

		e = newEngine(articleFields, validator.WithConfig(cfg))
		ok, err := e.Validate(ctx, map[string]any{}, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEngine_Metadata(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("zero fields never touch the record", func(t *testing.T) {
		meta := &mockMetadata{}
		meta.On("FieldsInfo", mock.Anything, "node", "page").Return([]validator.FieldSpec{}, nil)
		props := &mockProperties{}

		e := validator.New(
			validator.WithMetadata(meta),
			validator.WithProperties(props),
			validator.WithEntityType("node"),
			validator.WithBundle("page"),
		)
		ok, err := e.Validate(ctx, struct{}{}, false)

		require.NoError(t, err)
		assert.True(t, ok)
		meta.AssertExpectations(t)
		props.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("provider error", func(t *testing.T) {
		meta := &mockMetadata{}
		boom := errors.New("boom")
		meta.On("FieldsInfo", mock.Anything, "node", "").Return(nil, boom)

		e := validator.New(
			validator.WithMetadata(meta),
			validator.WithProperties(property.New()),
			validator.WithEntityType("node"),
		)
		_, err := e.Validate(ctx, map[string]any{}, true)
		assert.ErrorIs(t, err, validator.ErrMetadata)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown rules fail before any field runs", func(t *testing.T) {
		props := &mockProperties{}
		e := validator.New(
			validator.WithMetadata(fields(
				validator.FieldSpec{Name: "title", Validators: []string{validator.RuleIsText}},
				validator.FieldSpec{Name: "body", Validators: []string{"isSlug"}},
				validator.FieldSpec{Name: "tags", Preprocessors: []string{"morphTags"}},
			)),
			validator.WithProperties(props),
			validator.WithEntityType("node"),
		)

		ok, err := e.Validate(ctx, map[string]any{}, true)
		assert.False(t, ok)
		require.ErrorIs(t, err, validator.ErrUnknownRule)
		assert.Contains(t, err.Error(), "isSlug")
		assert.Contains(t, err.Error(), "morphTags")
		props.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		assert.Equal(t, validator.StateError, e.LastOutcome())
	})

	t.Run("missing bindings", func(t *testing.T) {
		_, err := validator.New().Validate(ctx, nil, true)
		assert.ErrorIs(t, err, validator.ErrMissingMetadata)

		_, err = validator.New(validator.WithMetadata(fields())).Validate(ctx, nil, true)
		assert.ErrorIs(t, err, validator.ErrMissingProperties)

		e := validator.New(validator.WithMetadata(fields()), validator.WithProperties(property.New()))
		_, err = e.Validate(ctx, nil, true)
		assert.ErrorIs(t, err, validator.ErrMissingEntityType)
		assert.Equal(t, validator.StateError, e.LastOutcome())

		ok, err := e.SetEntityType("node").SetBundle("page").Validate(ctx, nil, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestEngine_Preprocessors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("changed value is written back", func(t *testing.T) {
		record := map[string]any{}
		props := &mockProperties{}
		props.On("Get", record, "title").Return("  Hello  ", nil)
		props.On("Set", record, "title", "Hello").Return(nil)

		e := validator.New(
			validator.WithMetadata(fields(validator.FieldSpec{
				Name:          "title",
				Preprocessors: []string{validator.MorphText},
				Validators:    []string{validator.RuleIsText},
			})),
			validator.WithProperties(props),
			validator.WithEntityType("node"),
		)

		ok, err := e.Validate(ctx, record, false)
		require.NoError(t, err)
		assert.True(t, ok)
		props.AssertExpectations(t)
	})

	t.Run("unchanged value is not written", func(t *testing.T) {
		record := map[string]any{}
		props := &mockProperties{}
		props.On("Get", record, "title").Return("Hello", nil)

		e := validator.New(
			validator.WithMetadata(fields(validator.FieldSpec{
				Name:          "title",
				Preprocessors: []string{validator.MorphText},
			})),
			validator.WithProperties(props),
			validator.WithEntityType("node"),
		)

		_, err := e.Validate(ctx, record, false)
		require.NoError(t, err)
		props.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validators see the preprocessed value", func(t *testing.T) {
		e := newEngine([]validator.FieldSpec{{
			Name:          "tags",
			Required:      true,
			Preprocessors: []string{validator.MorphList, validator.MorphUnique},
			Validators:    []string{validator.RuleIsList},
		}})
		record := map[string]any{"tags": "go"}

		ok, err := e.Validate(ctx, record, false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{"go"}, record["tags"])
	})

	t.Run("access errors", func(t *testing.T) {
		boom := errors.New("boom")
		props := &mockProperties{}
		props.On("Get", mock.Anything, "title").Return(nil, boom)

		e := validator.New(
			validator.WithMetadata(fields(validator.FieldSpec{Name: "title", Required: true})),
			validator.WithProperties(props),
			validator.WithEntityType("node"),
		)
		_, err := e.Validate(ctx, map[string]any{}, true)
		assert.ErrorIs(t, err, validator.ErrPropertyAccess)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("write errors", func(t *testing.T) {
		type article struct {
			Year int `field:"year"`
		}
		e := newEngine([]validator.FieldSpec{{
			Name:          "year",
			Preprocessors: []string{validator.MorphList},
		}})
		_, err := e.Validate(ctx, &article{Year: 2000}, true)
		assert.ErrorIs(t, err, validator.ErrPropertyAccess)
		assert.ErrorIs(t, err, property.ErrTypeMismatch)
	})
}

func TestEngine_CustomRules(t *testing.T) {
	t.Parallel()

	reg := validator.NewRegistry()
	reg.MustRegisterValidator("maxLength", func(f *validator.Field, value any) {
		s, _ := value.(string)
		if limit := f.Setting("max_length"); limit != "" && len(s) > len(limit) {
			f.SetError("The field %{field} exceeds %{limit} characters.", map[string]string{"limit": limit})
		}
	})
	reg.MustRegisterValidator("sameAs", func(f *validator.Field, value any) {
		record, _ := f.Record().(map[string]any)
		if record["confirm"] != value {
			f.SetError("The field %{field} on %{entity} does not match.", map[string]string{
				"entity": f.EntityType() + "/" + f.Bundle(),
			})
		}
	})

	e := newEngine([]validator.FieldSpec{
		{Name: "code", Validators: []string{"maxLength"}, Settings: map[string]string{"max_length": "999"}},
		{Name: "password", Validators: []string{"sameAs"}},
	}, validator.WithRegistry(reg))

	ok, err := e.Validate(context.Background(), map[string]any{
		"code":     "abcd",
		"password": "secret",
		"confirm":  "other",
	}, true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t,
		"The field code exceeds 999 characters."+validator.Separator+
			"The field password on node/article does not match.",
		e.SquashedErrors(),
	)
}

func TestEngine_Hooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("hooks run before the schema is resolved", func(t *testing.T) {
		var order []string
		meta := validator.MetadataFunc(func(context.Context, string, string) ([]validator.FieldSpec, error) {
			order = append(order, "metadata")
			return nil, nil
		})
		e := validator.New(
			validator.WithMetadata(meta),
			validator.WithProperties(property.New()),
			validator.WithEntityType("node"),
			validator.WithPreValidate(func(_ context.Context, e *validator.Engine) error {
				order = append(order, "hook")
				e.AddMetaData("seen", true)
				return nil
			}),
		)

		ok, err := e.Validate(ctx, nil, false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"hook", "metadata"}, order)
		assert.Equal(t, true, e.MetaData()["seen"])
	})

	t.Run("hook error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		e := newEngine(articleFields).PreValidate(func(context.Context, *validator.Engine) error {
			return boom
		})

		ok, err := e.Validate(ctx, map[string]any{}, false)
		assert.False(t, ok)
		assert.ErrorIs(t, err, validator.ErrPreValidate)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, e.Errors())
	})

	t.Run("hook switches bundle", func(t *testing.T) {
		meta := &mockMetadata{}
		meta.On("FieldsInfo", mock.Anything, "node", "page").
			Return([]validator.FieldSpec{{Name: "body", Validators: []string{"inBundle"}}}, nil)

		var seen []string
		var got reports
		e := validator.New(
			validator.WithMetadata(meta),
			validator.WithProperties(property.New()),
			validator.WithEntityType("node"),
			validator.WithBundle("article"),
			validator.WithObserver(&got),
			validator.WithPreValidate(func(_ context.Context, e *validator.Engine) error {
				e.SetBundle("page")
				return nil
			}),
		)
		e.Registry().MustRegisterValidator("inBundle", func(f *validator.Field, _ any) {
			run, _ := logger.RunFromContext(f.Context())
			seen = append(seen, f.EntityType()+"/"+f.Bundle(), run.Bundle)
			f.SetError("The field %{field} is not allowed.", nil)
		})

		ok, err := e.Validate(ctx, map[string]any{"body": "x"}, false)
		assert.False(t, ok)
		failed := validator.ExtractFailed(err)
		require.NotNil(t, failed)
		assert.Equal(t, "page", failed.Bundle)
		assert.Equal(t, []string{"node/page", "page"}, seen)
		require.Len(t, got, 1)
		assert.Equal(t, "page", got[0].Bundle)
		meta.AssertExpectations(t)
	})

	t.Run("hook clears entity type", func(t *testing.T) {
		e := newEngine(articleFields, validator.WithPreValidate(func(_ context.Context, e *validator.Engine) error {
			e.SetEntityType("")
			return nil
		}))

		ok, err := e.Validate(ctx, map[string]any{}, false)
		assert.False(t, ok)
		assert.ErrorIs(t, err, validator.ErrMissingEntityType)
	})
}

func TestEngine_Concurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	e := newEngine(articleFields, validator.WithPreValidate(func(context.Context, *validator.Engine) error {
		close(entered)
		<-release
		return nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	var ok bool
	var err error
	go func() {
		defer wg.Done()
		ok, err = e.Validate(ctx, map[string]any{"title": "a", "body": "b"}, false)
	}()

	<-entered
	assert.Equal(t, validator.StateValidating, e.State())
	_, concurrentErr := e.Validate(ctx, map[string]any{}, true)
	assert.ErrorIs(t, concurrentErr, validator.ErrConcurrentValidation)

	close(release)
	wg.Wait()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, validator.StateIdle, e.State())
}

func TestEngine_Clone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	e := newEngine(articleFields).AddMetaData("tenant", "acme")
	c := e.Clone()

	_, _ = e.Validate(ctx, map[string]any{}, true)
	ok, err := c.Validate(ctx, map[string]any{"title": "a", "body": "b"}, true)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NotEmpty(t, e.Errors())
	assert.Empty(t, c.Errors())
	assert.Equal(t, "acme", c.MetaData()["tenant"])
	assert.Equal(t, e.EntityType(), c.EntityType())
	assert.Same(t, e.Registry(), c.Registry())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := e.Clone().Validate(ctx, map[string]any{"title": "a", "body": "b"}, false)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func sortedKeys(m map[string][]validator.ValidationError) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestEngine_Logging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var engineLog, providerLog bytes.Buffer
	providerLogger := logger.New(logger.WithOutput(&providerLog))
	meta := validator.MetadataFunc(func(ctx context.Context, _, _ string) ([]validator.FieldSpec, error) {
		providerLogger.InfoContext(ctx, "fields resolved")
		return articleFields, nil
	})

	e := newEngine(nil,
		validator.WithMetadata(meta),
		validator.WithLogger(logger.New(logger.WithOutput(&engineLog), logger.WithLevel(slog.LevelDebug))),
	)
	_, err := e.Validate(ctx, map[string]any{}, false)
	failed := validator.ExtractFailed(err)
	require.NotNil(t, failed)

	var provided map[string]any
	require.NoError(t, json.Unmarshal(providerLog.Bytes(), &provided))
	assert.Equal(t, failed.RunID.String(), provided["run_id"])
	assert.Equal(t, "node", provided["entity_type"])
	assert.Equal(t, "article", provided["bundle"])

	lines := bytes.Split(bytes.TrimSpace(engineLog.Bytes()), []byte("\n"))
	require.GreaterOrEqual(t, len(lines), 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, failed.RunID.String(), entry["run_id"])
	}

	var last map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &last))
	assert.Equal(t, "validation finished", last["msg"])
	assert.Equal(t, string(validator.StateInvalidRaised), last["outcome"])
	assert.InDelta(t, 2, last["error_count"], 0)
}

type reports []validator.Report

func (r *reports) ObserveRun(_ context.Context, rep validator.Report) { *r = append(*r, rep) }

func TestEngine_Observer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("buffered run", func(t *testing.T) {
		var got reports
		e := newEngine(articleFields, validator.WithObserver(&got), validator.WithObserver(nil))

		_, err := e.Validate(ctx, map[string]any{"title": "a"}, true)
		require.NoError(t, err)
		_, err = e.Validate(ctx, map[string]any{"title": "a", "body": "b"}, true)
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, validator.StateInvalidSilent, got[0].Outcome)
		assert.Equal(t, "node", got[0].EntityType)
		assert.Equal(t, "article", got[0].Bundle)
		require.Len(t, got[0].Violations, 1)
		assert.Equal(t, "body", got[0].Violations[0].Field)
		assert.Equal(t, validator.StateValid, got[1].Outcome)
		assert.Empty(t, got[1].Violations)
		assert.NotEqual(t, got[0].RunID, got[1].RunID)
	})

	t.Run("emitted violations are reported", func(t *testing.T) {
		var got reports
		e := newEngine(articleFields,
			validator.WithEmitter(notify.NewMemory()),
			validator.WithErrorLevel(validator.LevelEmit),
			validator.WithObserver(&got),
		)
		ok, err := e.Validate(ctx, map[string]any{}, false)
		require.NoError(t, err)
		assert.True(t, ok)

		require.Len(t, got, 1)
		assert.Equal(t, validator.StateValid, got[0].Outcome)
		assert.Len(t, got[0].Violations, 2)
	})

	t.Run("configuration error", func(t *testing.T) {
		var got reports
		e := validator.New(validator.WithObserver(&got))
		_, err := e.Validate(ctx, map[string]any{}, false)
		require.ErrorIs(t, err, validator.ErrMissingMetadata)

		require.Len(t, got, 1)
		assert.Equal(t, validator.StateError, got[0].Outcome)
	})

	t.Run("clone keeps observers", func(t *testing.T) {
		var got reports
		c := newEngine(articleFields, validator.WithObserver(&got)).Clone()
		_, _ = c.Validate(ctx, map[string]any{}, true)
		assert.Len(t, got, 1)
	})
}
