package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
)

type account struct {
	Owner   string
	balance int
	limit   int
	frozen  bool
}

func (a *account) GetBalance() int           { return a.balance }
func (a *account) SetBalance(v int) *account { a.balance = v; return a }
func (a *account) GetLimit() (int, error)    { return a.limit, errors.New("limit unavailable") }
func (a *account) SetLimit(v int) error      { return errors.New("limit is read-only") }
func (a *account) IsFrozen() bool            { return a.frozen }
func (a *account) SetFrozen(f bool)          { a.frozen = f }

func accountProperty(t *testing.T, typ introspect.Type, name string) introspect.PropertyDescriptor {
	t.Helper()

	pds, err := introspect.Properties(typ)
	require.NoError(t, err)

	for _, pd := range pds {
		if pd.Name == name {
			return pd
		}
	}

	t.Fatalf("property %s not found", name)

	return introspect.PropertyDescriptor{}
}

func accountSlot(t *testing.T, typ introspect.Type, name string) *introspect.Slot {
	t.Helper()

	slots, err := typ.Slots()
	require.NoError(t, err)

	for i := range slots {
		if slots[i].Name == name {
			return &slots[i]
		}
	}

	t.Fatalf("slot %s not found", name)

	return nil
}

func TestDefaultAccess_Modes(t *testing.T) {
	both := NewDefaultAccess()
	assert.True(t, both.FieldScanAllowed())
	assert.True(t, both.AccessorScanAllowed())

	fields := NewDefaultAccess(WithAccessMode(AccessFields))
	assert.True(t, fields.FieldScanAllowed())
	assert.False(t, fields.AccessorScanAllowed())

	accessors := NewDefaultAccess(WithAccessMode(AccessAccessors))
	assert.False(t, accessors.FieldScanAllowed())
	assert.True(t, accessors.AccessorScanAllowed())

	assert.Equal(t, "default(mode=accessors, unexported=false)", accessors.String())
}

func TestDefaultAccess_ChooseSetter(t *testing.T) {
	typ, err := introspect.TypeFor[account]()
	require.NoError(t, err)

	a := NewDefaultAccess()

	balance := accountProperty(t, typ, "balance")
	require.Nil(t, balance.Write)

	setter := a.ChooseSetter(typ, balance)
	require.NotNil(t, setter)
	assert.Equal(t, "SetBalance", setter.Name)
	assert.Equal(t, "GetBalance", a.ChooseGetter(typ, balance).Name)

	frozen := accountProperty(t, typ, "frozen")
	assert.Equal(t, "SetFrozen", a.ChooseSetter(typ, frozen).Name)
}

func TestDefaultAccess_ReadWrite(t *testing.T) {
	typ, err := introspect.TypeFor[account]()
	require.NoError(t, err)

	a := NewDefaultAccess()
	acc := &account{}

	balance := accountProperty(t, typ, "balance")
	setter := a.ChooseSetter(typ, balance)

	require.NoError(t, a.WriteProperty(acc, "balance", 30, nil, setter))

	v, err := a.ReadProperty(acc, "balance", nil, balance.Read)
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	owner := accountSlot(t, typ, "Owner")
	require.NoError(t, a.WriteProperty(acc, "owner", "ann", owner, nil))

	v, err = a.ReadProperty(*acc, "owner", owner, nil)
	require.NoError(t, err)
	assert.Equal(t, "ann", v)

	err = a.WriteProperty(acc, "owner", 5, owner, nil)
	assert.ErrorIs(t, err, mapperr.ErrAccess)
	assert.ErrorContains(t, err, "cannot assign int to string")
}

func TestDefaultAccess_Errors(t *testing.T) {
	typ, err := introspect.TypeFor[account]()
	require.NoError(t, err)

	a := NewDefaultAccess()
	acc := &account{}

	limit := accountProperty(t, typ, "limit")

	_, err = a.ReadProperty(acc, "limit", nil, limit.Read)
	assert.ErrorIs(t, err, mapperr.ErrAccess)
	assert.ErrorContains(t, err, "limit unavailable")

	err = a.WriteProperty(acc, "limit", 1, nil, limit.Write)
	assert.ErrorIs(t, err, mapperr.ErrAccess)
	assert.ErrorContains(t, err, "limit is read-only")

	_, err = a.ReadProperty(acc, "ghost", nil, nil)
	assert.ErrorContains(t, err, "no getter or accessible field")

	hidden := accountSlot(t, typ, "balance")

	err = a.WriteProperty(acc, "balance", 1, hidden, nil)
	assert.ErrorContains(t, err, "no setter or accessible field")
	assert.False(t, a.Readable(hidden, nil))
	assert.False(t, a.IncludeField(hidden))

	unexported := NewDefaultAccess(WithUnexportedFields())
	require.NoError(t, unexported.WriteProperty(acc, "balance", 7, hidden, nil))
	assert.Equal(t, 7, acc.balance)
	assert.True(t, unexported.Readable(hidden, nil))
	assert.True(t, unexported.Writable(hidden, nil))
}
