package app_test

import (
	"testing"

	"github.com/Spok95/telegram-attendance-bot/internal/app"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

func registry(names ...string) []models.Student {
	out := make([]models.Student, 0, len(names))
	for i, n := range names {
		out = append(out, models.Student{ID: int64(i + 1), Name: n, StudentNumber: int64(i + 1)})
	}
	return out
}

func TestNormalizeCandidate_Suffix(t *testing.T) {
	cases := map[string]string{
		"Kildong-i":  "Kildong",
		"길동이":        "길동",
		"Kildong":    "Kildong",
		"  Kildong ": "Kildong",
		"-i":         "-i", // пустого имени после среза не бывает
	}
	for in, want := range cases {
		if got := app.NormalizeCandidate(in); got != want {
			t.Errorf("%q: ожидали %q, получили %q", in, want, got)
		}
	}
}

func TestMatchRegistry_Exact(t *testing.T) {
	students := registry("Иванов Пётр", "Петров Иван")
	st := app.MatchRegistry(students, "Петров Иван")
	if st == nil || st.Name != "Петров Иван" {
		t.Fatalf("ожидали точное совпадение, получили %v", st)
	}
}

func TestMatchRegistry_ExactCaseInsensitive(t *testing.T) {
	students := registry("Kildong Hong")
	st := app.MatchRegistry(students, "kildong hong")
	if st == nil || st.Name != "Kildong Hong" {
		t.Fatalf("регистр не должен мешать точному совпадению, получили %v", st)
	}
}

func TestMatchRegistry_CandidateInsideRegistered(t *testing.T) {
	// короткое имя из сообщения находит полное имя в реестре
	students := registry("Kildong Hong", "Иванов Пётр")
	st := app.MatchRegistry(students, "Kildong")
	if st == nil || st.Name != "Kildong Hong" {
		t.Fatalf("ожидали Kildong Hong по вхождению, получили %v", st)
	}
}

func TestMatchRegistry_ReverseContainment(t *testing.T) {
	// кандидат длиннее зарегистрированного имени
	students := registry("Hong")
	st := app.MatchRegistry(students, "Kildong Hong")
	if st == nil || st.Name != "Hong" {
		t.Fatalf("ожидали обратное вхождение, получили %v", st)
	}
}

func TestMatchRegistry_ShortestWinsInStage(t *testing.T) {
	// внутри ступени побеждает самое короткое имя, а не порядок реестра
	students := registry("Александров Иван Сергеевич", "Иванов")
	st := app.MatchRegistry(students, "Иван")
	if st == nil || st.Name != "Иванов" {
		t.Fatalf("ожидали самое короткое имя ступени, получили %v", st)
	}
}

func TestMatchRegistry_ExactBeatsContainment(t *testing.T) {
	students := registry("Иван Иванов", "Иван")
	st := app.MatchRegistry(students, "Иван Иванов")
	if st == nil || st.Name != "Иван Иванов" {
		t.Fatalf("точное совпадение важнее вхождения, получили %v", st)
	}
}

func TestMatchRegistry_NoMatch(t *testing.T) {
	students := registry("Иванов Пётр")
	if st := app.MatchRegistry(students, "Сидоров"); st != nil {
		t.Fatalf("ожидали nil, получили %v", st)
	}
	if st := app.MatchRegistry(students, ""); st != nil {
		t.Fatalf("пустой кандидат не совпадает ни с кем, получили %v", st)
	}
}

func TestMatchRegistry_SuffixThenMatch(t *testing.T) {
	students := registry("Kildong Hong")
	st := app.MatchRegistry(students, app.NormalizeCandidate("Kildong-i"))
	if st == nil || st.Name != "Kildong Hong" {
		t.Fatalf("после среза хвоста ожидали Kildong Hong, получили %v", st)
	}
}
