package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/money"
)

// Границы для полей закупки и бронирования
const (
	MinTicketPrice     = 1000.0
	HighTicketPrice    = 200000.0
	MaxTicketPrice     = 500000.0
	MaxQuantity        = 1000
	LargeQuantity      = 100
	MaxBatchTotalCost  = 100000000.0 // 10 крор
	LongTripDays       = 60
	MaxNameLength      = 100
	MaxAddressLength   = 255
	MinAddressLength   = 10
	FarFutureFlightAge = 365 * 24 * time.Hour
)

var (
	bdMobileRe      = regexp.MustCompile(`^(?:\+?880|0)1[3-9]\d{8}$`)
	intlPhoneRe     = regexp.MustCompile(`^\+\d{8,15}$`)
	emailRe         = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	passportRe      = regexp.MustCompile(`^[A-Z0-9]{6,9}$`)
	bdPassportRe    = regexp.MustCompile(`^[A-Z]{1,2}\d{7}$`)
	personNameRe    = regexp.MustCompile(`^[\p{L} .'\-]+$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// NormalizePhone убирает пробелы, дефисы и скобки из номера
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

// ValidatePhone проверяет номер телефона (бангладешский мобильный или международный формат)
func ValidatePhone(phone string) *Result {
	r := newResult()
	p := NormalizePhone(phone)

	switch {
	case p == "":
		r.addError("Phone number is required")
	case bdMobileRe.MatchString(p):
	case intlPhoneRe.MatchString(p):
		r.addWarning("Phone number is not a Bangladeshi mobile number")
	default:
		r.addError("Phone number format is invalid")
	}

	return r
}

// ValidateEmail проверяет email; пустое значение допустимо, если поле не обязательное
func ValidateEmail(email string, required bool) *Result {
	r := newResult()
	e := strings.TrimSpace(email)

	if e == "" {
		if required {
			r.addError("Email is required")
		}
		return r
	}
	if !emailRe.MatchString(e) {
		r.addError("Email format is invalid")
	}

	return r
}

// ValidatePassportNumber проверяет номер паспорта
func ValidatePassportNumber(passport string) *Result {
	r := newResult()
	p := domain.NormalizePassportNumber(passport)

	switch {
	case p == "":
		r.addError("Passport number is required")
	case !passportRe.MatchString(p):
		r.addError("Passport number must be 6-9 letters or digits")
	case !bdPassportRe.MatchString(p):
		r.addWarning("Passport number does not look like a Bangladeshi passport")
	}

	return r
}

// ValidatePrice проверяет цену одного билета
func ValidatePrice(price float64) *Result {
	r := newResult()

	switch {
	case math.IsNaN(price) || math.IsInf(price, 0):
		r.addError("Price must be a number")
	case price <= 0:
		r.addError("Price must be greater than zero")
	case price > MaxTicketPrice:
		r.addError(fmt.Sprintf("Price cannot exceed %s", money.FormatCurrency(MaxTicketPrice)))
	case price < MinTicketPrice:
		r.addWarning("Price is unusually low")
	case price > HighTicketPrice:
		r.addWarning("Price is unusually high")
	}

	return r
}

// ValidateQuantity проверяет количество билетов
func ValidateQuantity(quantity int) *Result {
	r := newResult()

	switch {
	case quantity <= 0:
		r.addError("Quantity must be at least 1")
	case quantity > MaxQuantity:
		r.addError(fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity))
	case quantity > LargeQuantity:
		r.addWarning("Large quantity, double-check the purchase")
	}

	return r
}

// ValidateFlightDate проверяет дату вылета относительно текущего момента
func ValidateFlightDate(date, now time.Time) *Result {
	r := newResult()
	if date.IsZero() {
		r.addError("Flight date is required")
		return r
	}

	day := domain.DateOnly(date)
	today := domain.DateOnly(now)

	switch {
	case day.Before(today):
		r.addError("Flight date cannot be in the past")
	case day.Sub(today) <= 24*time.Hour:
		r.addWarning("Flight is very soon")
	case day.Sub(today) > FarFutureFlightAge:
		r.addWarning("Flight date is more than a year ahead")
	}

	return r
}

// ValidateDateRange проверяет пару дат вылета и возврата
func ValidateDateRange(departure, ret time.Time) *Result {
	r := newResult()

	if departure.IsZero() || ret.IsZero() {
		r.addError("Departure and return dates are required")
		return r
	}

	if !ret.After(departure) {
		r.addError("Return date must be after departure date")
		return r
	}

	if ret.Sub(departure) > LongTripDays*24*time.Hour {
		r.addWarning(fmt.Sprintf("Trip is longer than %d days", LongTripDays))
	}

	return r
}

// ValidateAgentName проверяет имя агента
func ValidateAgentName(name string) *Result {
	r := newResult()
	n := strings.TrimSpace(name)

	switch {
	case n == "":
		r.addError("Agent name is required")
	case utf8.RuneCountInString(n) < 2:
		r.addError("Agent name is too short")
	case utf8.RuneCountInString(n) > MaxNameLength:
		r.addError(fmt.Sprintf("Agent name cannot exceed %d characters", MaxNameLength))
	}

	return r
}

// ValidateAgentContact проверяет контакт агента: телефон или email, поле опционально
func ValidateAgentContact(contact string) *Result {
	r := newResult()
	c := strings.TrimSpace(contact)
	if c == "" {
		return r
	}

	if strings.Contains(c, "@") {
		return ValidateEmail(c, true)
	}
	return ValidatePhone(c)
}

// ValidateAgentAddress проверяет адрес агента, поле опционально
func ValidateAgentAddress(address string) *Result {
	r := newResult()
	a := strings.TrimSpace(address)
	if a == "" {
		return r
	}

	switch {
	case utf8.RuneCountInString(a) > MaxAddressLength:
		r.addError(fmt.Sprintf("Agent address cannot exceed %d characters", MaxAddressLength))
	case utf8.RuneCountInString(a) < MinAddressLength:
		r.addWarning("Agent address looks incomplete")
	}

	return r
}

// ValidatePassengerName проверяет имя пассажира (как в паспорте)
func ValidatePassengerName(name string) *Result {
	r := newResult()
	n := strings.TrimSpace(name)

	switch {
	case n == "":
		r.addError("Passenger name is required")
	case utf8.RuneCountInString(n) < 2:
		r.addError("Passenger name is too short")
	case utf8.RuneCountInString(n) > MaxNameLength:
		r.addError(fmt.Sprintf("Passenger name cannot exceed %d characters", MaxNameLength))
	case !personNameRe.MatchString(n):
		r.addError("Passenger name can contain only letters, spaces, dots, apostrophes and hyphens")
	}

	return r
}

// ParseCalendarDate разбирает дату YYYY-MM-DD из формы
// Пустое значение возвращает нулевое время без ошибки: обязательность проверяет ValidateDateRange
func ParseCalendarDate(value, field string) (time.Time, *Result) {
	r := newResult()
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, r
	}

	t, err := domain.ParseDate(value)
	if err != nil {
		r.addError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
		return time.Time{}, r
	}
	return t, r
}
