package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RegistrySuite struct {
	suite.Suite
	store    *InMemory
	registry *Registry
	ctx      context.Context
}

func (s *RegistrySuite) SetupTest() {
	s.store = NewInMemory()
	s.registry = NewRegistry(s.store)
	s.ctx = context.Background()
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestRegister() {
	s.Run("creates a student with defaults", func() {
		id, err := s.registry.Register(s.ctx, "s1", "Ada", 42, "")
		s.Require().NoError(err)
		s.Equal(RoleStudent, id.Role)
		s.False(id.CreatedAt.IsZero())
	})

	s.Run("rejects missing fields", func() {
		_, err := s.registry.Register(s.ctx, "", "Ada", 42, "")
		s.Error(err)
		_, err = s.registry.Register(s.ctx, "s2", "", 43, "")
		s.Error(err)
		_, err = s.registry.Register(s.ctx, "s2", "Bob", -1, "")
		s.Error(err)
	})
}

func (s *RegistrySuite) TestFingerprintCollision() {
	_, err := s.registry.Register(s.ctx, "s1", "Ada", 42, "")
	s.Require().NoError(err)

	s.Run("rejects another uid claiming the same fingerprint", func() {
		_, err := s.registry.Register(s.ctx, "s2", "Bob", 42, "")
		s.Require().ErrorIs(err, ErrFingerprintTaken)
	})

	s.Run("same uid may re-register with its own fingerprint", func() {
		_, err := s.registry.Register(s.ctx, "s1", "Ada Lovelace", 42, "")
		s.Require().NoError(err)
		got, err := s.store.Get(s.ctx, "s1")
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", got.Name)
	})
}

func (s *RegistrySuite) TestReRegisterKeepsCreatedAt() {
	first, err := s.registry.Register(s.ctx, "s1", "Ada", 42, "")
	s.Require().NoError(err)

	second, err := s.registry.Register(s.ctx, "s1", "Ada L.", 43, RoleStaff)
	s.Require().NoError(err)
	s.True(second.CreatedAt.Equal(first.CreatedAt), "updates keep the original enrollment time")
	s.Equal(int64(43), second.FingerprintID)
	s.Equal(RoleStaff, second.Role)
}

func (s *RegistrySuite) TestStudentsAndRemove() {
	_, err := s.registry.Register(s.ctx, "s2", "Bob", 2, "")
	s.Require().NoError(err)
	_, err = s.registry.Register(s.ctx, "s1", "Ada", 1, "")
	s.Require().NoError(err)
	_, err = s.registry.Register(s.ctx, "t1", "Carol", 3, RoleStaff)
	s.Require().NoError(err)

	students, err := s.registry.Students(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(students, 2, "staff are excluded")
	s.Equal("s1", students[0].UID)
	s.Equal("s2", students[1].UID)

	s.Require().NoError(s.registry.Remove(s.ctx, "s1"))
	got, err := s.registry.Student(s.ctx, "s1")
	s.Require().NoError(err)
	s.Nil(got)

	// Removing again is a no-op.
	s.NoError(s.registry.Remove(s.ctx, "s1"))
}
