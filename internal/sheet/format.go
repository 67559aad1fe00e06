package sheet

import (
	"strings"

	"github.com/contactbook/internal/locale"
)

// Column positions of the exchange format, left to right.
const (
	ColumnID = iota
	ColumnName
	ColumnBookmarked
	ColumnDetailType
	ColumnDetailValue

	ColumnCount
)

// NoDetail is the detail-type cell written for a contact without details.
const NoDetail = "-"

// Format holds the localized labels and tokens of the exchange format.
type Format struct {
	Language  string
	SheetName string
	FileName  string
	Header    [ColumnCount]string
	Yes       string
	No        string
	None      string
}

// FormatFor returns the format for zh or en; anything else falls back to en.
func FormatFor(language string) Format {
	if locale.NormalizeLanguage(language) == locale.LanguageChinese {
		return Format{
			Language:  locale.LanguageChinese,
			SheetName: "联系人列表",
			FileName:  "联系人列表.xlsx",
			Header:    [ColumnCount]string{"ID", "姓名", "是否收藏", "联系方式类型", "联系方式值"},
			Yes:       "是",
			No:        "否",
			None:      NoDetail,
		}
	}
	return Format{
		Language:  locale.LanguageEnglish,
		SheetName: "Contacts",
		FileName:  "contacts.xlsx",
		Header:    [ColumnCount]string{"ID", "Name", "Bookmarked", "DetailType", "DetailValue"},
		Yes:       "yes",
		No:        "no",
		None:      NoDetail,
	}
}

// IsAffirmative reports whether a bookmark cell means true. Only the exact
// affirmative token counts; everything else, including empty, is false.
func (f Format) IsAffirmative(cell string) bool {
	return strings.TrimSpace(cell) == f.Yes
}

// BookmarkToken renders a bookmark flag as the yes/no token.
func (f Format) BookmarkToken(bookmarked bool) string {
	if bookmarked {
		return f.Yes
	}
	return f.No
}

// IsNone reports whether a detail-type cell is the "no detail" sentinel.
func (f Format) IsNone(cell string) bool {
	return strings.TrimSpace(cell) == f.None
}
