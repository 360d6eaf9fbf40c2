package form

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Kind tags the variant of a Rule.
type Kind int

// Rule kinds. The zero Kind is not a valid rule.
const (
	KindRequired Kind = iota + 1
	KindPattern
	KindMinLength
	KindMaxLength
	KindMin
	KindGreaterThan
	KindWhole
	KindTag
	KindCustom
	KindAll
)

func (k Kind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindPattern:
		return "pattern"
	case KindMinLength:
		return "min_length"
	case KindMaxLength:
		return "max_length"
	case KindMin:
		return "min"
	case KindGreaterThan:
		return "greater_than"
	case KindWhole:
		return "whole"
	case KindTag:
		return "tag"
	case KindCustom:
		return "custom"
	case KindAll:
		return "all"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule validates a single field value. Rules are pure: checking the same
// value twice gives the same result. Build rules with the constructors in
// this package; the zero Rule is invalid and panics when checked.
type Rule struct {
	Kind    Kind
	Message string

	pattern *regexp.Regexp
	length  int
	bound   float64
	tag     string
	fn      func(value any) error
	rules   []Rule
}

var tagValidator = validator.New()

// Required fails when the value, as a string, is empty after trimming
// whitespace.
func Required(message string) Rule {
	return Rule{Kind: KindRequired, Message: message}
}

// Pattern fails when the value, as a string, does not match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{Kind: KindPattern, Message: message, pattern: re}
}

// MinLength fails when the value has fewer than n characters.
func MinLength(n int, message string) Rule {
	return Rule{Kind: KindMinLength, Message: message, length: n}
}

// MaxLength fails when the value has more than n characters.
func MaxLength(n int, message string) Rule {
	return Rule{Kind: KindMaxLength, Message: message, length: n}
}

// Min fails when the value is not a number greater than or equal to x.
func Min(x float64, message string) Rule {
	return Rule{Kind: KindMin, Message: message, bound: x}
}

// GreaterThan fails when the value is not a number strictly greater than x.
func GreaterThan(x float64, message string) Rule {
	return Rule{Kind: KindGreaterThan, Message: message, bound: x}
}

// Whole fails when the value is not a whole number that fits in an int. A
// blank string counts as zero.
func Whole(message string) Rule {
	return Rule{Kind: KindWhole, Message: message}
}

// Tag checks the value, as a string, against a go-playground validator tag
// such as "url" or "email".
func Tag(tag, message string) Rule {
	return Rule{Kind: KindTag, Message: message, tag: tag}
}

// Custom wraps fn. A nil return is success; the error text becomes the
// field's message.
func Custom(fn func(value any) error) Rule {
	return Rule{Kind: KindCustom, fn: fn}
}

// All passes when every rule passes and reports the first failure.
func All(rules ...Rule) Rule {
	return Rule{Kind: KindAll, rules: append([]Rule(nil), rules...)}
}

// Check validates value. It returns nil on success and an error carrying the
// rule's message on failure.
func (r Rule) Check(value any) error {
	switch r.Kind {
	case KindRequired:
		if strings.TrimSpace(asString(value)) == "" {
			return r.fail()
		}
	case KindPattern:
		if !r.pattern.MatchString(asString(value)) {
			return r.fail()
		}
	case KindMinLength:
		if utf8.RuneCountInString(asString(value)) < r.length {
			return r.fail()
		}
	case KindMaxLength:
		if utf8.RuneCountInString(asString(value)) > r.length {
			return r.fail()
		}
	case KindMin:
		n, ok := asNumber(value)
		if !ok || n < r.bound {
			return r.fail()
		}
	case KindGreaterThan:
		n, ok := asNumber(value)
		if !ok || n <= r.bound {
			return r.fail()
		}
	case KindWhole:
		d, ok := asDecimal(value)
		if !ok || !d.IsInteger() || d.LessThan(minInt) || d.GreaterThan(maxInt) {
			return r.fail()
		}
	case KindTag:
		if err := tagValidator.Var(asString(value), r.tag); err != nil {
			return r.fail()
		}
	case KindCustom:
		return r.fn(value)
	case KindAll:
		for _, sub := range r.rules {
			if err := sub.Check(value); err != nil {
				return err
			}
		}
	default:
		panic(fmt.Sprintf("form: check on invalid rule %s", r.Kind))
	}
	return nil
}

func (r Rule) fail() error {
	return errors.New(r.Message)
}

// asString renders a field value the way an input control would hold it.
func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return v.String()
	default:
		return cast.ToString(v)
	}
}

var (
	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// asNumber converts a field value to a number. A blank string counts as
// zero, matching how numeric inputs report an untouched control.
func asNumber(value any) (float64, bool) {
	d, ok := asDecimal(value)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// asDecimal converts a field value to an exact decimal. Blank strings are
// zero; nil, booleans and text that is not a number are not numbers.
func asDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil, bool:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		return asDecimal(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, true
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
