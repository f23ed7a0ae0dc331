package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/twbloc/twbloc/extract"
)

const testWorkbook = `<?xml version='1.0' encoding='utf-8' ?>
<workbook>
  <datasources>
    <datasource caption='Ülevaade' name='federated.x'>
      <column caption='Piirkond' datatype='string' name='[piirkond]'/>
    </datasource>
  </datasources>
  <worksheets>
    <worksheet name='Ülevaade'>
      <layout-options>
        <title>
          <formatted-text>
            <run>Piirkondlik ülevaade</run>
          </formatted-text>
        </title>
      </layout-options>
    </worksheet>
  </worksheets>
  <windows>
    <window class='worksheet' name='Ülevaade'/>
  </windows>
</workbook>
`

func TestWorkbook_EndToEnd(t *testing.T) {
	mock := &MockBackend{Translations: map[string]string{
		"Ülevaade":             "Overview",
		"Piirkond":             "Region",
		"Piirkondlik ülevaade": "Regional overview",
	}}
	opts := &Options{Backend: mock, Language: "English"}

	got, report, err := Workbook(context.Background(), testWorkbook, opts)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	if !report.ValidBefore {
		t.Errorf("source flagged invalid: %s", report.MessageBefore)
	}
	if !report.ValidAfter {
		t.Errorf("output flagged invalid: %s", report.MessageAfter)
	}

	for _, want := range []string{
		"<worksheet name='Overview'>",
		"caption='Overview'",
		"caption='Region'",
		"<run>Regional overview</run>",
		"<window class='worksheet' name='Overview'/>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, "Ülevaade") {
		t.Error("untranslated occurrences left behind")
	}
	if report.Replacements < 2 {
		t.Errorf("Replacements = %d, want >= 2", report.Replacements)
	}
	if report.Found[extract.CategoryWorksheetNames] != 1 {
		t.Errorf("Found[worksheet_names] = %d, want 1", report.Found[extract.CategoryWorksheetNames])
	}
}

func TestWorkbook_DryRun(t *testing.T) {
	mock := &MockBackend{}
	opts := &Options{Backend: mock, Language: "English", DryRun: true}

	got, report, err := Workbook(context.Background(), testWorkbook, opts)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	if got != testWorkbook {
		t.Error("dry run modified the document")
	}
	if mock.CallCount != 0 {
		t.Errorf("dry run called the backend %d times", mock.CallCount)
	}
	if report.Found[extract.CategoryCaptions] != 2 {
		t.Errorf("Found[captions] = %d, want 2", report.Found[extract.CategoryCaptions])
	}
}

// A source that does not parse still goes through the pipeline, with
// the failure recorded in the report.
func TestWorkbook_MalformedSourceProceeds(t *testing.T) {
	var warnings []string
	mock := &MockBackend{Translations: map[string]string{"Katki": "Broken"}}
	opts := &Options{
		Backend:  mock,
		Language: "English",
		OnError:  func(format string, args ...any) { warnings = append(warnings, format) },
	}

	content := "<workbook><worksheet name='Katki'>"
	got, report, err := Workbook(context.Background(), content, opts)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	if report.ValidBefore {
		t.Error("malformed source reported as valid")
	}
	if len(warnings) == 0 {
		t.Error("malformed source not warned about")
	}
	if !strings.Contains(got, "name='Broken'") {
		t.Errorf("substitution skipped on malformed source: %q", got)
	}
}

// Identity translations coming back from the service must not produce
// replacements.
func TestWorkbook_IdentityTranslationsSkipped(t *testing.T) {
	mock := &MockBackend{} // echoes every item unchanged
	opts := &Options{Backend: mock, Language: "English"}

	got, report, err := Workbook(context.Background(), testWorkbook, opts)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	if got != testWorkbook {
		t.Error("identity translations changed the document")
	}
	if report.Replacements != 0 {
		t.Errorf("Replacements = %d, want 0", report.Replacements)
	}
}
