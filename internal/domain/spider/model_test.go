package spider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityCode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		code := SecurityCode("000001.SZ")
		assert.NoError(t, code.Validate())
		assert.Equal(t, "000001", code.Symbol())
	})

	t.Run("suffix only", func(t *testing.T) {
		for _, code := range []SecurityCode{"", ".SZ", "SZ"} {
			err := code.Validate()
			assert.True(t, errors.Is(err, ErrInvalidSecurityCode), "code %q", code)
			assert.Empty(t, code.Symbol())
		}
	})
}

func TestShareholderRecord_IsLocked(t *testing.T) {
	cost := 12.3
	assert.True(t, ShareholderRecord{Quantity: "1万股"}.IsLocked())
	assert.False(t, ShareholderRecord{Quantity: "1万股", Cost: &cost}.IsLocked())
}

func TestCompanyReferenceRow_Value(t *testing.T) {
	row := CompanyReferenceRow{Code: "000001.SZ", Industry: "银行", MainBusiness: "商业银行业务"}

	v, ok := row.Value(IndicatorIndustry)
	assert.True(t, ok)
	assert.Equal(t, "银行", v)

	v, ok = row.Value(IndicatorMainBusiness)
	assert.True(t, ok)
	assert.Equal(t, "商业银行业务", v)

	_, ok = row.Value(IndicatorEPS)
	assert.False(t, ok)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrSchemaNotFound))
	assert.True(t, IsExternalError(ErrFetch))
	assert.True(t, IsExternalError(ErrReferenceUnavailable))
	assert.True(t, IsInputError(ErrUnknownIndicator))
	assert.True(t, IsInputError(ErrInvalidSecurityCode))
	assert.False(t, IsExternalError(ErrParse))
}
