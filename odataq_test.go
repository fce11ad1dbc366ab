package odataq_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/odataq"
)

func TestTranslateQuery(t *testing.T) {
	res, err := odataq.TranslateQuery("/Products?$filter=Price lt 10 and startswith(Name,'Ch')&$orderby=Price desc&$top=5")
	require.NoError(t, err)

	assert.Equal(t, "Products", res.Collection)
	assert.Equal(t, odataq.SortSpec{{Field: "Price", Direction: -1}}, res.Sort)
	require.NotNil(t, res.Limit)
	assert.EqualValues(t, 5, *res.Limit)

	data, err := json.Marshal(res.Filter)
	require.NoError(t, err)
	assert.JSONEq(t, `{"$and":[{"Price":{"$lt":10}},{"Name":{"$regularExpression":{"pattern":"^Ch","options":"i"}}}]}`, string(data))
}

func TestTranslateQueryNode(t *testing.T) {
	node, err := odataq.ParseQuery("Orders?$select=Id,Customer/Name")
	require.NoError(t, err)

	res, err := odataq.TranslateQueryNode(node)
	require.NoError(t, err)
	assert.Equal(t, odataq.Projection{"Id": 1, "Customer.Name": 1}, res.Projection)
}

func TestTranslateFilter(t *testing.T) {
	filter, err := odataq.TranslateFilter("not (Status eq 'closed')")
	require.NoError(t, err)

	data, err := json.Marshal(filter)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Status":{"$not":{"$eq":"closed"}}}`, string(data))
}

func TestTranslateFilterNode(t *testing.T) {
	node, err := odataq.ParseFilter("Qty ge 3")
	require.NoError(t, err)

	filter, err := odataq.TranslateFilterNode(node)
	require.NoError(t, err)
	assert.Len(t, filter, 1)
}

func TestErrors(t *testing.T) {
	_, err := odataq.TranslateQuery("People?$filter=Name eq")
	assert.True(t, odataq.IsParseError(err))

	_, err = odataq.TranslateFilter("substring(Name,1) eq 'x'")
	assert.True(t, odataq.IsUnsupportedMethod(err))

	deep := strings.Repeat("(", 20) + "A eq 1" + strings.Repeat(")", 20)
	_, err = odataq.TranslateFilter(deep, odataq.WithMaxDepth(10))
	require.Error(t, err)
	assert.True(t, odataq.IsParseError(err) || odataq.IsTooComplex(err))

	node, err := odataq.ParseFilter(deep)
	require.NoError(t, err)
	_, err = odataq.TranslateFilterNode(node, odataq.WithMaxDepth(10))
	assert.True(t, odataq.IsTooComplex(err))
}

func TestWithMaxDepth_SameLimitForParserAndTranslator(t *testing.T) {
	for n := 1; n <= 5; n++ {
		nested := strings.Repeat("(", n) + "A eq 1" + strings.Repeat(")", n)

		filter, err := odataq.TranslateFilter(nested, odataq.WithMaxDepth(n))
		require.NoError(t, err, "depth %d", n)
		assert.Len(t, filter, 1)

		_, err = odataq.TranslateQuery("People?$filter="+nested, odataq.WithMaxDepth(n))
		require.NoError(t, err, "depth %d", n)

		_, err = odataq.TranslateFilter("("+nested+")", odataq.WithMaxDepth(n))
		assert.True(t, odataq.IsParseError(err), "depth %d", n+1)
	}

	_, err := odataq.TranslateFilter("A eq 1", odataq.WithMaxDepth(1))
	assert.NoError(t, err)

	_, err = odataq.TranslateQuery("People?$expand=Trips($filter=(A eq 1))", odataq.WithMaxDepth(1))
	assert.True(t, odataq.IsTooComplex(err))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := odataq.TranslateQuery("People?$top=1", odataq.WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "query translated")
	assert.Contains(t, buf.String(), "collection=People")
}
