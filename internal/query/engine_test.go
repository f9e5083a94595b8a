package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-console/internal/domain"
)

func mkUser(username, display, email string, role domain.Role, status domain.Status, created time.Time) domain.User {
	return domain.User{
		ID: "id-" + username, Username: username, DisplayName: display, Email: email,
		Role: role, Status: status, CreatedAt: created, UpdatedAt: created,
	}
}

func threeUsers() []domain.User {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.User{
		mkUser("amy", "Amy A", "amy@example.com", domain.RoleAdmin, domain.StatusActive, t1),
		mkUser("bob", "Bob B", "bob@example.com", domain.RoleUser, domain.StatusActive, t1.Add(time.Hour)),
		mkUser("cam", "Cam C", "cam@example.com", domain.RoleUser, domain.StatusSuspended, t1.Add(2*time.Hour)),
	}
}

func TestRunPaginationExample(t *testing.T) {
	users := threeUsers()

	page, err := Run(users, Descriptor{Page: 1, PageSize: 2, SortBy: "createdAt", SortOrder: Asc})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "amy", page.Items[0].Username)
	assert.Equal(t, "bob", page.Items[1].Username)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page2, err := Run(users, Descriptor{Page: 2, PageSize: 2, SortBy: "createdAt", SortOrder: Asc})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "cam", page2.Items[0].Username)
}

func TestRunSearchCaseInsensitive(t *testing.T) {
	page, err := Run(threeUsers(), Descriptor{Page: 1, PageSize: 10, Search: "AM"})
	require.NoError(t, err)
	// "am" 命中 amy（username）与 cam（username）；大小写不敏感
	usernames := []string{}
	for _, u := range page.Items {
		usernames = append(usernames, u.Username)
	}
	assert.Equal(t, []string{"amy", "cam"}, usernames)

	page, err = Run(threeUsers(), Descriptor{Page: 1, PageSize: 10, Search: "amy@"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "amy", page.Items[0].Username)
}

func TestRunEmptySearchEqualsAbsent(t *testing.T) {
	a, err := Run(threeUsers(), Descriptor{Page: 1, PageSize: 10, Search: "  "})
	require.NoError(t, err)
	b, err := Run(threeUsers(), Descriptor{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, b.Total, a.Total)
}

func TestRunFilterConjunction(t *testing.T) {
	users := threeUsers()
	page, err := Run(users, Descriptor{Page: 1, PageSize: 10, Role: "user", Status: "active"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].Username)

	// "all" 等价于不过滤
	page, err = Run(users, Descriptor{Page: 1, PageSize: 10, Role: "all", Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestRunStableSort(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []domain.User{
		mkUser("u1", "Dup", "u1@example.com", domain.RoleUser, domain.StatusActive, t1),
		mkUser("u2", "Dup", "u2@example.com", domain.RoleUser, domain.StatusActive, t1),
		mkUser("u3", "Dup", "u3@example.com", domain.RoleUser, domain.StatusActive, t1),
		mkUser("u4", "Aaa", "u4@example.com", domain.RoleUser, domain.StatusActive, t1),
	}
	page, err := Run(users, Descriptor{Page: 1, PageSize: 10, SortBy: "displayName", SortOrder: Asc})
	require.NoError(t, err)
	got := []string{}
	for _, u := range page.Items {
		got = append(got, u.Username)
	}
	// 同键记录保持原相对顺序
	assert.Equal(t, []string{"u4", "u1", "u2", "u3"}, got)

	page, err = Run(users, Descriptor{Page: 1, PageSize: 10, SortBy: "displayName", SortOrder: Desc})
	require.NoError(t, err)
	got = got[:0]
	for _, u := range page.Items {
		got = append(got, u.Username)
	}
	// desc 只翻转键的比较方向，并列的相对顺序不变
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, got)
}

func TestRunSortCaseInsensitive(t *testing.T) {
	t1 := time.Now()
	users := []domain.User{
		mkUser("b", "bob", "b@example.com", domain.RoleUser, domain.StatusActive, t1),
		mkUser("a", "Alice", "a@example.com", domain.RoleUser, domain.StatusActive, t1),
	}
	page, err := Run(users, Descriptor{Page: 1, PageSize: 10, SortBy: "displayName"})
	require.NoError(t, err)
	assert.Equal(t, "a", page.Items[0].Username)
}

func TestRunPaginationCompleteness(t *testing.T) {
	users := threeUsers()
	for _, size := range []int{1, 2, 3, 5} {
		var collected []string
		page := 1
		for {
			p, err := Run(users, Descriptor{Page: page, PageSize: size, SortBy: "username"})
			require.NoError(t, err)
			for _, u := range p.Items {
				collected = append(collected, u.Username)
			}
			if page >= p.TotalPages {
				break
			}
			page++
		}
		assert.Equal(t, []string{"amy", "bob", "cam"}, collected, "pageSize=%d", size)
	}
}

func TestRunContractViolations(t *testing.T) {
	_, err := Run(threeUsers(), Descriptor{Page: 0, PageSize: 10})
	assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))

	_, err = Run(threeUsers(), Descriptor{Page: 1, PageSize: 0})
	assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))
}

func TestRunOutOfRangePage(t *testing.T) {
	page, err := Run(threeUsers(), Descriptor{Page: 99, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestRunEmptyRecordsAndOversizedPage(t *testing.T) {
	page, err := Run(nil, Descriptor{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)

	page, err = Run(threeUsers(), Descriptor{Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPages)
}

func TestRunUnknownSortFieldKeepsOrder(t *testing.T) {
	page, err := Run(threeUsers(), Descriptor{Page: 1, PageSize: 10, SortBy: "nope"})
	require.NoError(t, err)
	assert.Equal(t, "amy", page.Items[0].Username)
	assert.Equal(t, "cam", page.Items[2].Username)
}
