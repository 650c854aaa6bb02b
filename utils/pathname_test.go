package utils_test

import (
	"regexp"
	"strings"
	"testing"

	"kalvi/models"
	"kalvi/utils"
)

var pathSafe = regexp.MustCompile(`^[A-Za-z0-9_\x{0B80}-\x{0BFF}-]+$`)

func TestCleanForFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World!!", "Hello_World"},
		{"Algebra", "Algebra"},
		{"  spaced  out  ", "spaced_out"},
		{"___already__underscored___", "already_underscored"},
		{"a/b\\c:d", "a_b_c_d"},
		{"த.மி.ழ்", "த_மி_ழ்"},
	}

	for _, tc := range cases {
		got := utils.CleanForFilename(tc.in)
		if got != tc.want {
			t.Errorf("CleanForFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanForFilename_Empty(t *testing.T) {
	got := utils.CleanForFilename("")
	if matched, _ := regexp.MatchString(`^Item_\d+$`, got); !matched {
		t.Errorf("CleanForFilename(\"\") = %q, want Item_<digits>", got)
	}

	// All-junk input degrades the same way.
	got = utils.CleanForFilename("!!!???")
	if matched, _ := regexp.MatchString(`^Item_\d+$`, got); !matched {
		t.Errorf("CleanForFilename(junk) = %q, want Item_<digits>", got)
	}
}

func TestCleanForFilename_Truncates(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := utils.CleanForFilename(long)
	if len([]rune(got)) != 100 {
		t.Errorf("CleanForFilename(long) length = %d, want 100", len([]rune(got)))
	}
}

func TestCleanForFilename_AlwaysPathSafe(t *testing.T) {
	inputs := []string{"Hello World!!", "", "த.மி.ழ் Lesson 4", "a b/c", "#!@"}
	for _, in := range inputs {
		got := utils.CleanForFilename(in)
		if got == "" || !pathSafe.MatchString(got) {
			t.Errorf("CleanForFilename(%q) = %q is not path-safe", in, got)
		}
	}
}

func TestFormatUnitName(t *testing.T) {
	if got := utils.FormatUnitName("4"); got != "Unit_4" {
		t.Errorf("FormatUnitName(4) = %q, want Unit_4", got)
	}
	if got := utils.FormatUnitName("Algebra"); got != "Algebra" {
		t.Errorf("FormatUnitName(Algebra) = %q, want Algebra", got)
	}
	if got := utils.FormatUnitName(" 12 "); got != "Unit_12" {
		t.Errorf("FormatUnitName( 12 ) = %q, want Unit_12", got)
	}
}

func TestFirstNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Unit 4 - Fractions", "4"},
		{"12. Photosynthesis", "12"},
		{"Introduction", "0"},
		{"", "0"},
		{"v2 lesson 7", "2"},
	}
	for _, tc := range cases {
		if got := utils.FirstNumber(tc.in); got != tc.want {
			t.Errorf("FirstNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildObjectName(t *testing.T) {
	h := utils.ResolvedHierarchy{
		UnitName:    "Unit 4",
		SubUnitName: "4.2 Decimals",
		LessonName:  "Lesson 3",
	}

	if got := utils.BuildObjectName(h, models.TypeNotes, "irrelevant"); got != "4.4.3" {
		t.Errorf("BuildObjectName(notes) = %q, want 4.4.3", got)
	}

	if got := utils.BuildObjectName(h, models.TypeQuestionPaper, "Half Yearly 2025!"); got != "Half_Yearly_2025" {
		t.Errorf("BuildObjectName(questionPaper) = %q, want Half_Yearly_2025", got)
	}
}

func TestBuildFolderPath(t *testing.T) {
	h := utils.ResolvedHierarchy{
		ClassName:   "Class 6",
		SubjectName: "Maths",
		UnitName:    "4",
		SubUnitName: "4.1",
		LessonName:  "Fractions Intro",
	}

	got := utils.BuildFolderPath(h, models.TypeVideo, "")
	want := "Class_6/Maths/Unit_4/4_1/Fractions_Intro/Videos"
	if got != want {
		t.Errorf("BuildFolderPath(video) = %q, want %q", got, want)
	}

	got = utils.BuildFolderPath(h, models.TypeQuestionPaper, "Half Yearly")
	want = "Class_6/Maths/Questions paper/Half_Yearly"
	if got != want {
		t.Errorf("BuildFolderPath(questionPaper) = %q, want %q", got, want)
	}
}

func TestClassifyResourceKind(t *testing.T) {
	cases := []struct {
		resourceType string
		mime         string
		want         string
	}{
		{models.TypeVideo, "video/mp4", utils.KindVideo},
		{models.TypeNotes, "video/webm", utils.KindVideo},
		{models.TypeNotes, "image/png", utils.KindImage},
		{models.TypeNotes, "application/pdf", utils.KindRaw},
		// PDFs stay raw regardless of what else the request claims.
		{models.TypeSlide, "application/pdf", utils.KindRaw},
		{models.TypeWorksheet, "application/vnd.ms-excel", utils.KindRaw},
	}
	for _, tc := range cases {
		if got := utils.ClassifyResourceKind(tc.resourceType, tc.mime); got != tc.want {
			t.Errorf("ClassifyResourceKind(%q, %q) = %q, want %q", tc.resourceType, tc.mime, got, tc.want)
		}
	}
}
