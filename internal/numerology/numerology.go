package numerology

import (
	"time"

	"worker/internal/domain"
)

// arcanosMaiores maps the reduced 1..22 range onto the Major Arcana labels
// used by the prompt templates and stored readings.
var arcanosMaiores = map[int]string{
	1:  "O Mago",
	2:  "A Sacerdotisa",
	3:  "A Imperatriz",
	4:  "O Imperador",
	5:  "O Hierofante",
	6:  "Os Enamorados",
	7:  "O Carro",
	8:  "A Justiça",
	9:  "O Eremita",
	10: "A Roda da Fortuna",
	11: "A Força",
	12: "O Pendurado",
	13: "A Morte",
	14: "A Temperança",
	15: "O Diabo",
	16: "A Torre",
	17: "A Estrela",
	18: "A Lua",
	19: "O Sol",
	20: "O Julgamento",
	21: "O Mundo",
	22: "O Louco",
}

// Reduce collapses a number into the 1..22 arcana range by repeated digit
// summing. The master numbers 11 and 22 are fixed points and are not reduced
// further. Non-positive input maps to 22 (O Louco).
func Reduce(n int) int {
	if n <= 0 {
		return 22
	}
	for n > 9 && n != 11 && n != 22 {
		n = digitSum(n)
	}
	return n
}

// ArcanoName returns the Major Arcana label for a number, reducing it first.
func ArcanoName(n int) string {
	if name, ok := arcanosMaiores[Reduce(n)]; ok {
		return name
	}
	return "O Louco"
}

// SectionNumber calculates the numerology value for a reading section.
//
// The five base values derive from the birthdate:
//
//	a = day, b = month, c = digit sum of year,
//	d = reduce(a+b+c), e = reduce(a+d)
func SectionNumber(birthdate time.Time, section domain.Section) int {
	a := Reduce(birthdate.Day())
	b := Reduce(int(birthdate.Month()))
	c := Reduce(digitSum(birthdate.Year()))
	d := Reduce(a + b + c)
	e := Reduce(a + d)

	switch section {
	case domain.SectionSoulMission:
		return a
	case domain.SectionPersonality:
		return b
	case domain.SectionDestiny:
		return c
	case domain.SectionPurpose:
		return d
	case domain.SectionMaterialManifestation:
		return e
	}
	return 22
}

// SectionReading returns both the section number and its arcana label.
func SectionReading(birthdate time.Time, section domain.Section) (int, string) {
	n := SectionNumber(birthdate, section)
	return n, ArcanoName(n)
}

// PersonalYear calculates the personal year: birth day + birth month + digit
// sum of the universal year, reduced.
func PersonalYear(birthdate time.Time, year int) int {
	total := birthdate.Day() + int(birthdate.Month()) + digitSum(year)
	return Reduce(total)
}

// WeekNumber calculates the weekly value: personal year + ISO week number of
// the week start, reduced.
func WeekNumber(birthdate time.Time, weekStart time.Time) int {
	py := PersonalYear(birthdate, weekStart.Year())
	_, week := weekStart.ISOWeek()
	return Reduce(py + week)
}

// MonthlyCycle calculates the monthly value: personal year + month, reduced.
func MonthlyCycle(birthdate time.Time, month int, year int) int {
	py := PersonalYear(birthdate, year)
	return Reduce(py + month)
}

// RulingArcano returns the arcana label governing a personal year.
func RulingArcano(personalYear int) string {
	return ArcanoName(personalYear)
}

func digitSum(n int) int {
	if n < 0 {
		n = -n
	}
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}
