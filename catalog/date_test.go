package catalog_test

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

func Test_DateOf_DropsTimeOfDay_InOwnLocation(t *testing.T) {
	// arrange
	berlin := time.FixedZone("CET", 3600)
	lateEvening := time.Date(2024, time.May, 1, 23, 30, 0, 0, berlin)

	// act
	date := catalog.DateOf(lateEvening)

	// assert
	assert.Equal(t, "2024-05-01", date.String())
}

func Test_Date_AddDays_CrossesMonthBoundary(t *testing.T) {
	date := catalog.NewDate(2024, time.January, 25)

	assert.Equal(t, "2024-02-08", date.AddDays(14).String())
	assert.Equal(t, "2024-01-24", date.AddDays(-1).String())
}

func Test_Date_JSON(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary

	type wrapper struct {
		On   catalog.Date  `json:"on"`
		Back *catalog.Date `json:"back"`
	}

	// act
	encoded, err := json.Marshal(wrapper{On: catalog.NewDate(2024, time.March, 9)})
	require.NoError(t, err)

	var decoded wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2023-12-31","back":null}`), &decoded))

	// assert
	assert.JSONEq(t, `{"on":"2024-03-09","back":null}`, string(encoded))
	assert.Equal(t, catalog.NewDate(2023, time.December, 31), decoded.On)
	assert.Nil(t, decoded.Back)
}

func Test_ParseDate_RejectsGarbage(t *testing.T) {
	_, err := catalog.ParseDate("09.03.2024")

	assert.Error(t, err)
}
