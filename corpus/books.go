package corpus

import "strings"

// osisBooks maps OSIS book ids to English names, in canonical order.
var osisBooks = [][2]string{
	{"Gen", "Genesis"}, {"Exod", "Exodus"}, {"Lev", "Leviticus"}, {"Num", "Numbers"},
	{"Deut", "Deuteronomy"}, {"Josh", "Joshua"}, {"Judg", "Judges"}, {"Ruth", "Ruth"},
	{"1Sam", "1 Samuel"}, {"2Sam", "2 Samuel"}, {"1Kgs", "1 Kings"}, {"2Kgs", "2 Kings"},
	{"1Chr", "1 Chronicles"}, {"2Chr", "2 Chronicles"}, {"Ezra", "Ezra"}, {"Neh", "Nehemiah"},
	{"Esth", "Esther"}, {"Job", "Job"}, {"Ps", "Psalms"}, {"Prov", "Proverbs"},
	{"Eccl", "Ecclesiastes"}, {"Song", "Song of Solomon"}, {"Isa", "Isaiah"}, {"Jer", "Jeremiah"},
	{"Lam", "Lamentations"}, {"Ezek", "Ezekiel"}, {"Dan", "Daniel"}, {"Hos", "Hosea"},
	{"Joel", "Joel"}, {"Amos", "Amos"}, {"Obad", "Obadiah"}, {"Jonah", "Jonah"},
	{"Mic", "Micah"}, {"Nah", "Nahum"}, {"Hab", "Habakkuk"}, {"Zeph", "Zephaniah"},
	{"Hag", "Haggai"}, {"Zech", "Zechariah"}, {"Mal", "Malachi"},
	{"Matt", "Matthew"}, {"Mark", "Mark"}, {"Luke", "Luke"}, {"John", "John"},
	{"Acts", "Acts"}, {"Rom", "Romans"}, {"1Cor", "1 Corinthians"}, {"2Cor", "2 Corinthians"},
	{"Gal", "Galatians"}, {"Eph", "Ephesians"}, {"Phil", "Philippians"}, {"Col", "Colossians"},
	{"1Thess", "1 Thessalonians"}, {"2Thess", "2 Thessalonians"}, {"1Tim", "1 Timothy"},
	{"2Tim", "2 Timothy"}, {"Titus", "Titus"}, {"Phlm", "Philemon"}, {"Heb", "Hebrews"},
	{"Jas", "James"}, {"1Pet", "1 Peter"}, {"2Pet", "2 Peter"}, {"1John", "1 John"},
	{"2John", "2 John"}, {"3John", "3 John"}, {"Jude", "Jude"}, {"Rev", "Revelation"},
}

var bookIndex = func() map[string]string {
	idx := make(map[string]string, len(osisBooks)*3)
	for _, b := range osisBooks {
		idx[normBook(b[0])] = b[1]
		idx[normBook(b[1])] = b[1]
	}
	idx["psalm"] = "Psalms"
	idx["songofsongs"] = "Song of Solomon"
	return idx
}()

func normBook(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// BookName returns the English name for an OSIS id or a known spelling of a
// book ("1John", "1 john", "Gen"). Unknown names are returned trimmed.
func BookName(book string) string {
	if name, ok := bookIndex[normBook(book)]; ok {
		return name
	}
	return strings.TrimSpace(book)
}
