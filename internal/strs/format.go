// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// Formattable is implemented by values that know how to render themselves
// through a format sequence whose SPEC is empty and whose argument exposes
// a `_format` method (spec.md §4.8.4). The alorert facade supplies the
// concrete instance-dispatch implementation; this package only needs the
// interface to keep format.go free of a dependency on the instance model.
type Formattable interface {
	Format(spec string) (value.Value, error)
}

// ToStringer is the same kind of hook for the {} (no SPEC) case, which
// defers to the generic str() conversion (Str, below).
type ToStringer interface {
	ToString() (value.Value, error)
}

// numSpec is a parsed SPEC from a format sequence (spec.md §4.8.4).
type numSpec struct {
	minIntDigits int
	hasFrac      bool
	reqFracDigit int
	optFracDigit int
	scientific   bool
	sciUpper     bool
	expWidth     int
	expForceSign bool
}

func parseNumSpec(spec string) numSpec {
	var ns numSpec
	i := 0
	for i < len(spec) && spec[i] == '0' {
		ns.minIntDigits++
		i++
	}
	if i < len(spec) && spec[i] == '.' {
		ns.hasFrac = true
		i++
		for i < len(spec) && (spec[i] == '0' || spec[i] == '#') {
			if spec[i] == '0' {
				ns.reqFracDigit++
			} else {
				ns.optFracDigit++
			}
			i++
		}
	}
	if i < len(spec) && (spec[i] == 'e' || spec[i] == 'E') {
		ns.scientific = true
		ns.sciUpper = spec[i] == 'E'
		i++
		if i < len(spec) && spec[i] == '+' {
			ns.expForceSign = true
			i++
		}
		for i < len(spec) && spec[i] == '0' {
			ns.expWidth++
			i++
		}
	}
	return ns
}

// formatNonFinite normalizes a non-finite float to the spec's fixed
// spellings regardless of SPEC (spec.md §4.8.4's last bullet).
func formatNonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "nan", true
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	}
	return "", false
}

func formatFloat(f float64, ns numSpec) string {
	if s, ok := formatNonFinite(f); ok {
		return s
	}
	neg := math.Signbit(f)
	if neg {
		f = -f
	}

	var intPart string
	var fracDigits int
	if ns.hasFrac {
		fracDigits = ns.reqFracDigit + ns.optFracDigit
	} else {
		fracDigits = 0
	}

	var body string
	if ns.scientific {
		prec := fracDigits
		s := strconv.FormatFloat(f, 'e', prec, 64)
		mantissa, exp := splitExp(s)
		expVal, _ := strconv.Atoi(exp)
		sign := ""
		if expVal >= 0 {
			if ns.expForceSign {
				sign = "+"
			}
		} else {
			sign = "-"
			expVal = -expVal
		}
		expStr := strconv.Itoa(expVal)
		for len(expStr) < ns.expWidth {
			expStr = "0" + expStr
		}
		e := "e"
		if ns.sciUpper {
			e = "E"
		}
		mantissa = trimOptionalFrac(mantissa, ns)
		body = mantissa + e + sign + expStr
	} else {
		s := strconv.FormatFloat(f, 'f', fracDigits, 64)
		s = trimOptionalFrac(s, ns)
		body = s
	}

	intPart, fracPart, hasDot := cutDot(body)
	for len(intPart) < ns.minIntDigits {
		intPart = "0" + intPart
	}
	body = intPart
	if hasDot {
		body += "." + fracPart
	}

	if neg {
		body = "-" + body
	}
	return body
}

func cutDot(s string) (intPart, frac string, ok bool) {
	for i, c := range s {
		if c == '.' {
			return s[:i], s[i+1:], true
		}
		if c == 'e' || c == 'E' {
			break
		}
	}
	return s, "", false
}

func splitExp(s string) (mantissa, exp string) {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return s, "0"
	}
	return s[:i], s[i+1:]
}

// trimOptionalFrac drops trailing '#' (optional) fraction digits that came
// out as zero, per spec.md §4.8.4 ("optional trailing digits, suppressed
// if zero").
func trimOptionalFrac(s string, ns numSpec) string {
	if ns.optFracDigit == 0 {
		return s
	}
	intPart, fracPart, hasDot := cutDot(s)
	if !hasDot {
		return s
	}
	required := ns.reqFracDigit
	for len(fracPart) > required && strings.HasSuffix(fracPart, "0") {
		fracPart = fracPart[:len(fracPart)-1]
	}
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// formatSeq is one parsed `{...}` sequence from a format string.
type formatSeq struct {
	width int
	left  bool
	spec  string
	hasSpec bool
}

func parseSeq(seq string) (formatSeq, error) {
	var fs formatSeq
	i := 0
	if i < len(seq) && seq[i] == '-' {
		i++
	}
	start := i
	for i < len(seq) && seq[i] >= '0' && seq[i] <= '9' {
		i++
	}
	if i < len(seq) && seq[i] == ':' {
		fs.left = seq[0] == '-'
		if i > start {
			w, err := strconv.Atoi(seq[start:i])
			if err != nil {
				return fs, rterror.New(rterror.ValueErr, "invalid format width %q", seq[start:i])
			}
			fs.width = w
		}
		fs.hasSpec = true
		fs.spec = seq[i+1:]
		return fs, nil
	}
	if i > start && i == len(seq) {
		fs.left = seq[0] == '-'
		w, err := strconv.Atoi(seq[start:i])
		if err != nil {
			return fs, rterror.New(rterror.ValueErr, "invalid format width %q", seq[start:i])
		}
		fs.width = w
		return fs, nil
	}
	// No width recognized: a width is only ever taken as a width when
	// immediately followed by ':'; otherwise (std_str_format.c resets its
	// scan position and reparses from the start), the whole sequence,
	// including any digits, is the spec itself (e.g. "{00.00}").
	fs.hasSpec = true
	fs.spec = seq
	return fs, nil
}

func pad(s string, width int, left bool) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	fill := strings.Repeat(" ", width-n)
	if left {
		return s + fill
	}
	return fill + s
}

// FormatArg is the type-erased argument format() renders, so this package
// does not need to know about every Value kind the full interpreter
// supports; the alorert facade's Format wrapper adapts interpreter-level
// arguments to these before calling strs.Format.
type FormatArg struct {
	ShortInt   *int
	Float      *float64
	Str        value.Value
	HasStr     bool
	Custom     Formattable
	ToStr      ToStringer
}

// Format implements the §4.8.4 format-string language: literal text,
// `{{`/`}}` escapes, and `{[-]A:SPEC}` sequences.
func Format(rt *gc.Runtime, th *mutator.Thread, fmtStr value.Value, args []FormatArg) (value.Value, error) {
	units := ToUnits(fmtStr)
	var out strings.Builder
	argi := 0
	nextArg := func() (FormatArg, error) {
		if argi >= len(args) {
			return FormatArg{}, rterror.New(rterror.ValueErr, "not enough arguments for format string")
		}
		a := args[argi]
		argi++
		return a, nil
	}

	i := 0
	for i < len(units) {
		c := units[i]
		switch c {
		case '{':
			if i+1 < len(units) && units[i+1] == '{' {
				out.WriteByte('{')
				i += 2
				continue
			}
			j := i + 1
			for j < len(units) && units[j] != '}' {
				j++
			}
			if j >= len(units) {
				return 0, rterror.New(rterror.ValueErr, "unterminated format sequence")
			}
			seqRunes := make([]rune, 0, j-i-1)
			for k := i + 1; k < j; k++ {
				seqRunes = append(seqRunes, rune(units[k]))
			}
			fs, err := parseSeq(string(seqRunes))
			if err != nil {
				return 0, err
			}
			a, err := nextArg()
			if err != nil {
				return 0, err
			}
			rendered, err := renderArg(rt, th, fs, a)
			if err != nil {
				return 0, err
			}
			out.WriteString(pad(rendered, fs.width, fs.left))
			i = j + 1
		case '}':
			if i+1 < len(units) && units[i+1] == '}' {
				out.WriteByte('}')
				i += 2
				continue
			}
			return 0, rterror.New(rterror.ValueErr, "unmatched '}' in format string")
		default:
			out.WriteRune(rune(c))
			i++
		}
	}

	units16 := make([]uint16, 0, out.Len())
	for _, r := range out.String() {
		units16 = append(units16, uint16(r))
	}
	return FromBytes(rt, th, units16)
}

func renderArg(rt *gc.Runtime, th *mutator.Thread, fs formatSeq, a FormatArg) (string, error) {
	if fs.hasSpec && fs.spec != "" {
		if a.Float != nil {
			return formatFloat(*a.Float, parseNumSpec(fs.spec)), nil
		}
		if a.ShortInt != nil {
			return formatFloat(float64(*a.ShortInt), parseNumSpec(fs.spec)), nil
		}
		if a.Custom != nil {
			v, err := a.Custom.Format(fs.spec)
			if err != nil {
				return "", err
			}
			return unitsToString(ToUnits(v)), nil
		}
		return "", rterror.New(rterror.TypeErr, "argument has no custom formatter for %q", fs.spec)
	}
	// No SPEC: defer to the generic str() contract.
	switch {
	case a.HasStr:
		return unitsToString(ToUnits(a.Str)), nil
	case a.ShortInt != nil:
		return strconv.Itoa(*a.ShortInt), nil
	case a.Float != nil:
		if s, ok := formatNonFinite(*a.Float); ok {
			return s, nil
		}
		return strconv.FormatFloat(*a.Float, 'g', 10, 64), nil
	case a.ToStr != nil:
		v, err := a.ToStr.ToString()
		if err != nil {
			return "", err
		}
		return unitsToString(ToUnits(v)), nil
	default:
		return "", rterror.New(rterror.TypeErr, "value has no string conversion")
	}
}

func unitsToString(units []uint16) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteRune(rune(u))
	}
	return b.String()
}
