package validator

import (
	"fmt"
	"strconv"
	"strings"
)

// Image settings read by validateImageField.
const (
	SettingMaxResolution = "max_resolution"
	SettingMinResolution = "min_resolution"
)

// Image is the value of an image field.
type Image struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// validateImageField checks the image against the max_resolution and
// min_resolution settings. Both are "HxW" strings: height first, then width.
// All four bounds are checked independently.
func validateImageField(f *Field, value any) {
	if value == nil {
		return
	}
	img, ok := imageOf(value)
	if !ok {
		f.SetError(MsgNotImage, nil)
		return
	}

	params := map[string]string{
		"width":  strconv.Itoa(img.Width),
		"height": strconv.Itoa(img.Height),
	}

	if setting := f.Setting(SettingMaxResolution); setting != "" {
		maxHeight, maxWidth, err := ParseResolution(setting)
		if err != nil {
			f.Fail(fmt.Errorf("field %s: %w", f.Name(), err))
			return
		}
		params["max-width"] = strconv.Itoa(maxWidth)
		params["max-height"] = strconv.Itoa(maxHeight)

		if img.Width > maxWidth {
			f.SetError(MsgImageMaxWidth, params)
		}
		if img.Height > maxHeight {
			f.SetError(MsgImageMaxHeight, params)
		}
	}

	if setting := f.Setting(SettingMinResolution); setting != "" {
		minHeight, minWidth, err := ParseResolution(setting)
		if err != nil {
			f.Fail(fmt.Errorf("field %s: %w", f.Name(), err))
			return
		}
		params["min-width"] = strconv.Itoa(minWidth)
		params["min-height"] = strconv.Itoa(minHeight)

		if img.Width < minWidth {
			f.SetError(MsgImageMinWidth, params)
		}
		if img.Height < minHeight {
			f.SetError(MsgImageMinHeight, params)
		}
	}
}

// ParseResolution splits an "HxW" setting into height and width.
func ParseResolution(s string) (height, width int, err error) {
	h, w, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	height, err = strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	width, err = strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	return height, width, nil
}

func imageOf(value any) (Image, bool) {
	switch v := value.(type) {
	case Image:
		return v, true
	case *Image:
		if v == nil {
			return Image{}, false
		}
		return *v, true
	case map[string]any:
		w, okW := toInt(v["width"])
		h, okH := toInt(v["height"])
		if !okW || !okH {
			return Image{}, false
		}
		return Image{Width: int(w), Height: int(h)}, true
	case map[string]int:
		w, okW := v["width"]
		h, okH := v["height"]
		return Image{Width: w, Height: h}, okW && okH
	}
	return Image{}, false
}
