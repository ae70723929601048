package pivot

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/testutil"
)

func cellStrings(table *model.Table, row int) map[string]string {
	out := make(map[string]string, len(table.Columns))
	for i, col := range table.Columns {
		out[col] = table.Rows[row][i].String()
	}
	return out
}

func TestBuild_StoreScenario(t *testing.T) {
	lines, headers := testutil.StoreScenario()

	table, err := NewBuilder(jakarta(t)).Build(lines, headers)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Reported on", "Reported by", "POS Visit", "POS Alternative Import Name", "Status",
		"A", "B", "Total",
	}, table.Columns)
	require.Len(t, table.Rows, 2)

	// Visit 2 was reported later, so it comes first.
	assert.Equal(t, map[string]string{
		"Reported on":                 "2024-01-16 21:20",
		"Reported by":                 "",
		"POS Visit":                   "Store Beta Visit",
		"POS Alternative Import Name": "",
		"Status":                      "reported",
		"A":                           "2",
		"B":                           "",
		"Total":                       "2",
	}, cellStrings(table, 0))
	assert.True(t, table.Cell(0, "B").IsEmpty())

	assert.Equal(t, map[string]string{
		"Reported on":                 "2024-01-15 17:30",
		"Reported by":                 "John",
		"POS Visit":                   "Store Alpha Visit",
		"POS Alternative Import Name": "",
		"Status":                      "Validated",
		"A":                           "5",
		"B":                           "3",
		"Total":                       "8",
	}, cellStrings(table, 1))
	assert.True(t, table.Cell(1, "Total").IsNumber())
}

func TestBuild_MissingReportedOnSortsLast(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("A").Qty(1).Build(),
		testutil.Line(2).Product("A").Qty(1).ReportedOn("2024-01-10T00:00:00Z").Build(),
		testutil.Line(3).Product("A").Qty(1).ReportedOn("2024-02-10T00:00:00Z").Build(),
	}

	table, err := NewBuilder(jakarta(t)).Build(lines, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, "2024-02-10 07:00", table.Cell(0, model.ColumnReportedOn).String())
	assert.Equal(t, "2024-01-10 07:00", table.Cell(1, model.ColumnReportedOn).String())
	assert.Equal(t, "", table.Cell(2, model.ColumnReportedOn).String())
	assert.True(t, table.Cell(2, model.ColumnReportedOn).IsEmpty())
}

func TestBuild_AbsentQuantityStillCreatesColumn(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("Poster").ReportedOn("2024-01-15T10:30:00Z").Build(),
	}

	table, err := NewBuilder(jakarta(t)).Build(lines, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Poster"}, table.ProductColumns())
	require.Len(t, table.Rows, 1)
	assert.True(t, table.Cell(0, "Poster").IsNumber())
	assert.Equal(t, "0", table.Cell(0, "Poster").String())
	assert.Equal(t, "0", table.Cell(0, model.ColumnTotal).String())
}

func TestBuild_LineWithoutProductInitializesRow(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(7).Qty(4).ReportedOn("2024-01-15T10:30:00Z").Status("Validated").Build(),
	}

	table, err := NewBuilder(jakarta(t)).Build(lines, []model.VisitHeader{testutil.Header(7, "Kiosk")})
	require.NoError(t, err)

	assert.Equal(t, append(append([]string{}, model.FixedColumns...), model.ColumnTotal), table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Kiosk", table.Cell(0, model.ColumnVisitName).String())
	assert.Equal(t, "0", table.Cell(0, model.ColumnTotal).String())
}

func TestBuild_FirstSeenLineOwnsFixedFields(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:00Z").
			ReportedBy("John").Status("reported").AltName("first").Build(),
		testutil.Line(1).Product("A").Qty(2).ReportedOn("2024-03-01T10:30:00Z").
			ReportedBy("Jane").Status("Validated").AltName("second").Build(),
	}

	table, err := NewBuilder(jakarta(t)).Build(lines, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	got := cellStrings(table, 0)
	assert.Equal(t, "2024-01-15 17:30", got[model.ColumnReportedOn])
	assert.Equal(t, "John", got[model.ColumnReportedBy])
	assert.Equal(t, "reported", got[model.ColumnStatus])
	assert.Equal(t, "first", got[model.ColumnAlternativeImportName])
	assert.Equal(t, "3", got["A"])
}

func TestBuild_ProductNamedLikeFixedColumn(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("A").Qty(3).Build(),
		testutil.Line(1).Product("Total").Qty(4).Build(),
		testutil.Line(1).Product("Status").Qty(1).Build(),
	}

	table, err := NewBuilder(jakarta(t)).Build(lines, nil)
	require.NoError(t, err)

	want := append(append([]string{}, model.FixedColumns...),
		"A", "Status"+ProductSuffix, "Total"+ProductSuffix, model.ColumnTotal)
	assert.Equal(t, want, table.Columns)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "8", table.Cell(0, model.ColumnTotal).String())
	assert.Equal(t, "4", table.Cell(0, "Total"+ProductSuffix).String())
	assert.Equal(t, "1", table.Cell(0, "Status"+ProductSuffix).String())
	assert.True(t, table.Cell(0, model.ColumnStatus).IsEmpty())
}

func TestBuild_NilStatusIsBlank(t *testing.T) {
	lines := []model.VisitLine{testutil.Line(1).Product("A").Qty(1).Build()}

	table, err := NewBuilder(nil).Build(lines, nil)
	require.NoError(t, err)
	assert.True(t, table.Cell(0, model.ColumnStatus).IsEmpty())
}

func TestBuild_LinesWithoutVisitShareOneRow(t *testing.T) {
	lines := []model.VisitLine{
		testutil.OrphanLine().Product("A").Qty(1).Build(),
		testutil.Line(1).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:00Z").Build(),
		testutil.OrphanLine().Product("B").Qty(2).ReportedOn("2024-05-01T00:00:00Z").Build(),
	}

	table, err := NewBuilder(jakarta(t)).Build(lines, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	// The orphan row was first seen without a timestamp, so it sorts last.
	assert.Equal(t, "1", table.Cell(1, "A").String())
	assert.Equal(t, "2", table.Cell(1, "B").String())
	assert.Equal(t, "3", table.Cell(1, model.ColumnTotal).String())
}

func TestBuild_HeaderLookupSkipsIncompleteHeaders(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("A").Qty(1).Build(),
		testutil.Line(2).Product("A").Qty(1).Build(),
	}
	headers := []model.VisitHeader{
		testutil.Header(1, ""),
		{ID: model.NoVisit, Name: "nobody"},
		testutil.Header(2, "Beta"),
	}

	table, err := NewBuilder(nil).Build(lines, headers)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "", table.Cell(0, model.ColumnVisitName).String())
	assert.Equal(t, "Beta", table.Cell(1, model.ColumnVisitName).String())
}

func TestBuild_EqualTimestampsKeepFirstSeenOrder(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(3).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:00Z").Build(),
		testutil.Line(1).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:59Z").Build(),
		testutil.Line(2).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:00Z").Build(),
	}
	headers := []model.VisitHeader{
		testutil.Header(1, "one"), testutil.Header(2, "two"), testutil.Header(3, "three"),
	}

	table, err := NewBuilder(nil).Build(lines, headers)
	require.NoError(t, err)

	var order []string
	for i := range table.Rows {
		order = append(order, table.Cell(i, model.ColumnVisitName).String())
	}
	assert.Equal(t, []string{"three", "one", "two"}, order)
}

func TestBuild_FractionalQuantities(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("Syrup").QtyString("0.1").Build(),
		testutil.Line(1).Product("Syrup").QtyString("0.2").Build(),
		testutil.Line(1).Product("Cups").Qty(2).Build(),
	}

	table, err := NewBuilder(nil).Build(lines, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.3", table.Cell(0, "Syrup").String())
	assert.Equal(t, "2.3", table.Cell(0, model.ColumnTotal).String())
}

func TestBuild_MalformedTimestampAbortsBuild(t *testing.T) {
	lines := []model.VisitLine{
		testutil.Line(1).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:00Z").Build(),
		testutil.Line(2).Product("A").Qty(1).ReportedOn("not a date").Build(),
	}

	table, err := NewBuilder(nil).Build(lines, nil)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, common.ErrUpstreamData))
}

func TestBuild_MalformedTimestampOnLaterLineIsIgnored(t *testing.T) {
	// Only the first line of a visit is normalized.
	lines := []model.VisitLine{
		testutil.Line(1).Product("A").Qty(1).ReportedOn("2024-01-15T10:30:00Z").Build(),
		testutil.Line(1).Product("A").Qty(1).ReportedOn("garbage").Build(),
	}

	table, err := NewBuilder(nil).Build(lines, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", table.Cell(0, "A").String())
}

func TestBuild_EmptyInput(t *testing.T) {
	table, err := NewBuilder(nil).Build(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Equal(t, append(append([]string{}, model.FixedColumns...), model.ColumnTotal), table.Columns)
}

func TestBuild_Idempotent(t *testing.T) {
	lines, headers := testutil.StoreScenario()
	b := NewBuilder(jakarta(t))

	first, err := b.Build(lines, headers)
	require.NoError(t, err)
	second, err := b.Build(lines, headers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	lines, headers := testutil.StoreScenario()
	linesCopy := append([]model.VisitLine(nil), lines...)
	headersCopy := append([]model.VisitHeader(nil), headers...)

	_, err := NewBuilder(jakarta(t)).Build(lines, headers)
	require.NoError(t, err)

	assert.Equal(t, linesCopy, lines)
	assert.Equal(t, headersCopy, headers)
}

func TestBuild_ConcurrentCalls(t *testing.T) {
	lines, headers := testutil.StoreScenario()
	b := NewBuilder(jakarta(t))

	want, err := b.Build(lines, headers)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*model.Table, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = b.Build(lines, headers)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

// randomLines produces lines with one timestamp per visit, so the first-seen
// fixed fields do not depend on input order.
func randomLines(rng *rand.Rand, n int) []model.VisitLine {
	products := []string{"Banner", "Cups", "Poster", "Shelf strip", "Wobbler"}
	lines := make([]model.VisitLine, 0, n)
	for range n {
		visit := rng.Intn(12)
		b := testutil.Line(visit).Qty(int64(rng.Intn(20)))
		if visit == 0 {
			b = testutil.OrphanLine().Qty(int64(rng.Intn(20)))
		}
		if rng.Intn(6) != 0 {
			b.Product(products[rng.Intn(len(products))])
		}
		if visit%5 != 0 {
			b.ReportedOn(fmt.Sprintf("2024-01-%02dT%02d:15:00Z", visit+1, visit))
		}
		lines = append(lines, b.Build())
	}
	return lines
}

func TestBuild_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := NewBuilder(jakarta(t))

	for iteration := range 25 {
		lines := randomLines(rng, 1+rng.Intn(80))

		table, err := b.Build(lines, nil)
		require.NoError(t, err, "iteration %d", iteration)

		// Row count equals distinct visits.
		visits := map[model.VisitKey]bool{}
		for _, l := range lines {
			visits[l.Visit] = true
		}
		assert.Len(t, table.Rows, len(visits))

		// Product columns are exactly the observed names, ascending.
		observed := map[string]bool{}
		for _, l := range lines {
			if l.Product != "" {
				observed[l.Product] = true
			}
		}
		productCols := table.ProductColumns()
		assert.Len(t, productCols, len(observed))
		assert.IsNonDecreasing(t, productCols)
		for _, p := range productCols {
			assert.True(t, observed[p])
		}

		// Rows never go up in Reported on, and Total matches the product cells.
		for i := range table.Rows {
			if i > 0 {
				assert.GreaterOrEqual(t,
					table.Cell(i-1, model.ColumnReportedOn).String(),
					table.Cell(i, model.ColumnReportedOn).String())
			}
			sum := decimal.Zero
			for _, p := range productCols {
				if c := table.Cell(i, p); c.IsNumber() {
					sum = sum.Add(c.Number)
				}
			}
			assert.True(t, sum.Equal(table.Cell(i, model.ColumnTotal).Number))
		}

		// Aggregation does not depend on input order.
		shuffled := append([]model.VisitLine(nil), lines...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again, err := b.Build(shuffled, nil)
		require.NoError(t, err)
		assert.Equal(t, table.Columns, again.Columns)
		assert.ElementsMatch(t, rowSignatures(table), rowSignatures(again))
	}
}

func rowSignatures(table *model.Table) []string {
	out := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		parts := make([]string, 0, len(row))
		for _, c := range row {
			parts = append(parts, c.String())
		}
		out = append(out, strings.Join(parts, "|"))
	}
	return out
}
