package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports/portstest"
	"toggl-mcp/internal/usecase"
)

func projectsFake() *portstest.Toggl {
	return &portstest.Toggl{
		ListProjectsFn: func(context.Context, int64, domain.ProjectListOptions) ([]domain.Project, error) {
			return []domain.Project{{ID: 10, Name: "Backend"}, {ID: 11, Name: "Frontend"}}, nil
		},
	}
}

func newProjectService(fake *portstest.Toggl) *usecase.ProjectService {
	return &usecase.ProjectService{Log: discardLogger(), Toggl: fake, Resolver: resolverFor(fake)}
}

func TestProjectCreate_ValidatesColor(t *testing.T) {
	fake := projectsFake()
	var sent domain.ProjectInput
	fake.CreateProjectFn = func(_ context.Context, _ int64, in domain.ProjectInput) (domain.Project, error) {
		sent = in
		return domain.Project{ID: 12, Name: in.Name}, nil
	}
	svc := newProjectService(fake)

	_, err := svc.Create(context.Background(), "", domain.ProjectInput{Name: "Ops", Color: "#123456"})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = svc.Create(context.Background(), "", domain.ProjectInput{Name: " "})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	p, err := svc.Create(context.Background(), "", domain.ProjectInput{Name: "Ops", Color: "#4DC3FF"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.ID)
	assert.Equal(t, "#4dc3ff", sent.Color)
	assert.True(t, *sent.Active)
}

func TestProjectDelete_ByName(t *testing.T) {
	fake := projectsFake()
	fake.DeleteProjectFn = func(_ context.Context, _ int64, id int64) (int, error) {
		assert.Equal(t, int64(11), id)
		return 200, nil
	}

	got, err := newProjectService(fake).Delete(context.Background(), "frontend", "")

	require.NoError(t, err)
	assert.Equal(t, domain.DeleteStatus{ID: 11, Status: 200}, got)
}

func TestProjectUpdate(t *testing.T) {
	fake := projectsFake()
	fake.PatchProjectsFn = func(_ context.Context, _ int64, ids []int64, ops []domain.PatchOperation) (json.RawMessage, error) {
		assert.Equal(t, []int64{10, 11}, ids)
		return json.RawMessage(`{"success":[10,11]}`), nil
	}
	svc := newProjectService(fake)
	ops := []domain.PatchOperation{{Op: "replace", Path: "/active", Value: false}}

	got, err := svc.Update(context.Background(), "", []string{"Backend", "Frontend"}, ops)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":[10,11]}`, string(got))

	_, err = svc.Update(context.Background(), "", []string{"Backend", "Missing"}, ops)
	assert.Equal(t, domain.CodeResolution, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "Error with project 'Missing'")

	_, err = svc.Update(context.Background(), "", []string{"Backend"}, nil)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = svc.Update(context.Background(), "", []string{"Backend"}, []domain.PatchOperation{{Op: "move", Path: "/x"}})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestProjectAllAndSearch(t *testing.T) {
	svc := newProjectService(projectsFake())

	all, err := svc.All(context.Background(), "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.Search(context.Background(), "", "end", false, false)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
