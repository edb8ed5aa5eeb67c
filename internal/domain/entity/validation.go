package entity

// dateLength is the length of a YYYYMMDD date.
const dateLength = 8

// ValidateDisclosureDate checks that date is exactly eight ASCII digits.
// An empty date yields ErrDateRequired; any other malformed value yields a
// ValidationError on the "date" field.
func ValidateDisclosureDate(date string) error {
	if date == "" {
		return ErrDateRequired
	}

	if len(date) != dateLength {
		return &ValidationError{Field: "date", Message: "must be in YYYYMMDD format"}
	}

	for i := 0; i < len(date); i++ {
		// 全角数字などは受け付けない
		if date[i] < '0' || date[i] > '9' {
			return &ValidationError{Field: "date", Message: "must be in YYYYMMDD format"}
		}
	}

	return nil
}
