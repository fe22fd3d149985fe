package domain

// Recipient is one validated spreadsheet row: a person to email.
//
// Every Recipient handed out by the reader has a parsed sequence number,
// non-empty trimmed name and academic year, and a well-formed email that is
// unique within the read that produced it.
type Recipient struct {
	SequenceNumber int    // "STT" column
	FullName       string // "Full_Name" column
	AcademicYear   string // "Academic_Year" column
	Email          string // "Email" column
}
