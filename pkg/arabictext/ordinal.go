package arabictext

import "strconv"

var ordinals = map[int]string{
	1:  "الأول",
	2:  "الثاني",
	3:  "الثالث",
	4:  "الرابع",
	5:  "الخامس",
	6:  "السادس",
	7:  "السابع",
	8:  "الثامن",
	9:  "التاسع",
	10: "العاشر",
}

// Ordinal returns the Arabic ordinal phrase for n. Values past ten fall back
// to the numeric form.
func Ordinal(n int) string {
	if o, ok := ordinals[n]; ok {
		return o
	}
	return "الـ" + strconv.Itoa(n)
}

// VolumeTitle is the display title of volume n: "المجلد الأول" and so on.
func VolumeTitle(n int) string {
	return "المجلد " + Ordinal(n)
}
