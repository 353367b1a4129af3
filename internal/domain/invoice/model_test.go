package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/ref"
)

func testItem(price string, qty int64) *InvoiceItem {
	return &InvoiceItem{
		ID:        id.New(),
		Product:   ref.Ref{Kind: "product", ID: id.New()},
		UnitPrice: types.MustMoney(price),
		Quantity:  types.NewQuantityFromInt(qty),
	}
}

func TestLineTotal(t *testing.T) {
	t.Run("price times quantity", func(t *testing.T) {
		item := testItem("50", 4)
		assert.True(t, item.LineTotal().Equal(types.MustMoney("200")))
	})

	t.Run("zero duration counts as one", func(t *testing.T) {
		item := testItem("50", 4)
		item.Duration = 0
		assert.True(t, item.LineTotal().Equal(types.MustMoney("200")))
	})

	t.Run("duration multiplies", func(t *testing.T) {
		item := testItem("50", 4)
		item.Duration = 3
		assert.True(t, item.LineTotal().Equal(types.MustMoney("600")))
	})

	t.Run("discount percent reduces", func(t *testing.T) {
		item := testItem("100", 2)
		item.DiscountPercent = types.MustMoney("25")
		assert.True(t, item.LineTotal().Equal(types.MustMoney("150")))
	})
}

func TestSubtotal(t *testing.T) {
	t.Run("empty list is zero", func(t *testing.T) {
		assert.True(t, Subtotal(nil).IsZero())
	})

	t.Run("sums line totals", func(t *testing.T) {
		items := []*InvoiceItem{testItem("50", 2), testItem("100", 1)}
		assert.True(t, Subtotal(items).Equal(types.MustMoney("200")))
	})
}

func TestTotal(t *testing.T) {
	// subtotal 200 in all cases
	items := []*InvoiceItem{testItem("100", 2)}

	t.Run("no factors equals subtotal", func(t *testing.T) {
		assert.True(t, Total(items, nil).Equal(types.MustMoney("200")))
	})

	t.Run("percent enhancer adds share of subtotal", func(t *testing.T) {
		factors := []Factor{
			{Title: "rush fee", Type: FactorEnhancer, Unit: UnitPercent, Amount: types.MustMoney("10")},
		}
		assert.True(t, Total(items, factors).Equal(types.MustMoney("220")))
	})

	t.Run("price reducer subtracts flat amount", func(t *testing.T) {
		factors := []Factor{
			{Title: "loyalty", Type: FactorReducer, Unit: UnitPrice, Amount: types.MustMoney("15")},
		}
		assert.True(t, Total(items, factors).Equal(types.MustMoney("185")))
	})

	t.Run("factors apply against original subtotal, not running total", func(t *testing.T) {
		factors := []Factor{
			{Title: "rush fee", Type: FactorEnhancer, Unit: UnitPercent, Amount: types.MustMoney("10")},
			{Title: "loyalty", Type: FactorReducer, Unit: UnitPrice, Amount: types.MustMoney("15")},
		}
		// 200 + 20 - 15, the percent factor sees 200, not 185
		assert.True(t, Total(items, factors).Equal(types.MustMoney("205")))
	})

	t.Run("two percent reducers do not compound", func(t *testing.T) {
		half := Factor{Title: "half", Type: FactorReducer, Unit: UnitPercent, Amount: types.MustMoney("10")}
		total := Total(items, []Factor{half, half})
		// 200 - 20 - 20, not 200*0.9*0.9
		assert.True(t, total.Equal(types.MustMoney("160")))
	})

	t.Run("zero amount contributes nothing", func(t *testing.T) {
		factors := []Factor{
			{Title: "noop", Type: FactorEnhancer, Unit: UnitPercent, Amount: types.Zero()},
			{Title: "noop", Type: FactorReducer, Unit: UnitPrice, Amount: types.Zero()},
		}
		assert.True(t, Total(items, factors).Equal(types.MustMoney("200")))
	})

	t.Run("rounds final total to currency precision", func(t *testing.T) {
		odd := []*InvoiceItem{testItem("0.10", 1)}
		factors := []Factor{
			{Title: "third", Type: FactorEnhancer, Unit: UnitPercent, Amount: types.MustMoney("33.333")},
		}
		// 0.10 + 0.0333333 rounds half-up to 0.13
		assert.Equal(t, "0.13", Total(odd, factors).StringFixed(2))
	})
}

func TestFactorValidate(t *testing.T) {
	valid := Factor{Title: "fee", Type: FactorEnhancer, Unit: UnitPercent, Amount: types.MustMoney("5")}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Type = "bonus"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Unit = "points"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Amount = types.MustMoney("-1")
	assert.Error(t, bad.Validate())
}

func TestInvoiceIsExpired(t *testing.T) {
	now := time.Now()
	inv := NewInvoice(ref.Ref{Kind: "person", ID: id.New()})

	assert.False(t, inv.IsExpired(now), "no validTill never expires")

	till := now.Add(time.Hour)
	inv.ValidTill = &till
	assert.False(t, inv.IsExpired(now))
	assert.True(t, inv.IsExpired(till), "expired exactly at validTill")
	assert.True(t, inv.IsExpired(till.Add(time.Minute)))
}

func TestInvoiceValidate(t *testing.T) {
	ctx := context.Background()

	inv := NewInvoice(ref.Ref{Kind: "person", ID: id.New()})
	inv.Number = 1
	require.NoError(t, inv.Validate(ctx))

	t.Run("client required", func(t *testing.T) {
		empty := NewInvoice(ref.Ref{})
		assert.Error(t, empty.Validate(ctx))
	})

	t.Run("item discount out of range", func(t *testing.T) {
		bad := NewInvoice(ref.Ref{Kind: "person", ID: id.New()})
		item := testItem("10", 1)
		item.DiscountPercent = types.MustMoney("101")
		bad.Items = []*InvoiceItem{item}
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("malformed factor", func(t *testing.T) {
		bad := NewInvoice(ref.Ref{Kind: "person", ID: id.New()})
		bad.Factors = FactorList{{Title: "x", Type: "wat", Unit: UnitPrice}}
		assert.Error(t, bad.Validate(ctx))
	})
}
