package extract

import (
	"reflect"
	"testing"
)

const sampleWorkbook = `<?xml version='1.0' encoding='utf-8' ?>
<workbook>
  <datasources>
    <datasource caption='Müügiandmed' name='federated.abc'>
      <column caption='Piirkond' datatype='string' name='[piirkond]'>
        <aliases>
          <alias key='"N"' value='Põhi' />
          <alias key='"S"' value='Lõuna' />
          <alias key='"X"' value='A &amp; B' />
        </aliases>
      </column>
      <column caption='measure_x' datatype='real' name='[measure_x]'/>
      <column caption='[Kategooria]' datatype='string' name='[kat]'/>
      <column caption='.hidden' datatype='string' name='[h]'/>
      <member alias='Kokku' />
      <member alias='A &amp; B' />
    </datasource>
  </datasources>
  <worksheets>
    <worksheet name='Ülevaade'>
      <layout-options>
        <title>
          <formatted-text>
            <run bold='true'>Piirkondlik ülevaade</run>
            <run>   </run>
            <run>A &amp; B</run>
          </formatted-text>
        </title>
      </layout-options>
    </worksheet>
    <worksheet name='Ülevaade'>
    </worksheet>
  </worksheets>
  <dashboards>
    <dashboard name='Juhtpaneel'>
    </dashboard>
  </dashboards>
</workbook>
`

func TestExtract_Categories(t *testing.T) {
	got := Extract(sampleWorkbook)

	want := map[Category][]string{
		CategoryWorksheetNames: {"Ülevaade"},
		CategoryDashboardNames: {"Juhtpaneel"},
		CategoryCaptions:       {"Müügiandmed", "Piirkond"},
		CategoryAliases:        {"Lõuna", "Põhi"},
		CategoryMembers:        {"Kokku"},
		CategoryDescriptions:   {"Piirkondlik ülevaade"},
	}
	for cat, items := range want {
		if !reflect.DeepEqual(got[cat], items) {
			t.Errorf("%s = %v, want %v", cat, got[cat], items)
		}
	}
}

func TestExtract_CaptionFilters(t *testing.T) {
	content := `<x caption='valid_Caption'/> <y caption='internal_name'/>` +
		` <z caption='[Field Ref]'/> <w caption='.relative'/> <v caption='A &amp; B'/>`
	got := Extract(content)[CategoryCaptions]
	want := []string{"valid_Caption"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("captions = %v, want %v", got, want)
	}
}

// Deduplication is per category: the same literal may appear in two
// categories independently.
func TestExtract_DedupWithinCategory(t *testing.T) {
	content := `<worksheet name='Sama'></worksheet><worksheet name='Sama'></worksheet>` +
		`<dashboard name='Sama'></dashboard>`
	got := Extract(content)
	if len(got[CategoryWorksheetNames]) != 1 {
		t.Errorf("worksheet_names = %v, want one entry", got[CategoryWorksheetNames])
	}
	if len(got[CategoryDashboardNames]) != 1 {
		t.Errorf("dashboard_names = %v, want one entry", got[CategoryDashboardNames])
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	got := Extract("")
	for _, cat := range Categories {
		if len(got[cat]) != 0 {
			t.Errorf("%s = %v, want empty", cat, got[cat])
		}
	}
	if Total(got) != 0 {
		t.Errorf("Total = %d, want 0", Total(got))
	}
}

func TestExtract_RunWhitespaceOnly(t *testing.T) {
	got := Extract("<run>   \n\t </run>")
	if len(got[CategoryDescriptions]) != 0 {
		t.Errorf("descriptions = %v, want empty for whitespace-only run", got[CategoryDescriptions])
	}
}

func TestExtract_RunWithAttributes(t *testing.T) {
	got := Extract("<run fontsize='14' bold='true'>Kirjeldus</run>")
	want := []string{"Kirjeldus"}
	if !reflect.DeepEqual(got[CategoryDescriptions], want) {
		t.Errorf("descriptions = %v, want %v", got[CategoryDescriptions], want)
	}
}

func TestTotal(t *testing.T) {
	got := Extract(sampleWorkbook)
	if n := Total(got); n != 8 {
		t.Errorf("Total = %d, want 8", n)
	}
}
