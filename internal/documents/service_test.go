package documents_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/documents"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/testing/testkit"
)

type stubRepo struct {
	docs      []documents.Document
	listCalls int
}

func (s *stubRepo) List(ctx context.Context, orgID uuid.UUID, kind documents.Kind) ([]documents.Document, error) {
	s.listCalls++
	var out []documents.Document
	for _, d := range s.docs {
		if d.OrganizationID == orgID && (kind == "" || d.Kind == kind) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubRepo) Create(ctx context.Context, orgID, actorID uuid.UUID, in documents.CreateInput) (documents.Document, error) {
	d := documents.Document{ID: uuid.New(), OrganizationID: orgID, Title: in.Title, Kind: in.Kind, URL: in.URL, UploadedBy: actorID}
	s.docs = append(s.docs, d)
	return d, nil
}

func TestListWithoutOrganization(t *testing.T) {
	repo := &stubRepo{}
	list, err := documents.NewService(repo, nil, nil, nil).List(context.Background(), scope.Scope{}, "")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, repo.listCalls)
}

func TestCreateInvalidatesKindFilteredList(t *testing.T) {
	sc := testkit.Member()
	repo := &stubRepo{}
	svc := documents.NewService(repo, testkit.Cache(t), nil, nil)
	ctx := context.Background()

	list, err := svc.List(ctx, sc, documents.KindRegister)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Create(ctx, sc, documents.CreateInput{Title: "Registre des traitements", Kind: documents.KindRegister, URL: "https://docs.example.fr/registre.pdf"})
	require.NoError(t, err)

	list, err = svc.List(ctx, sc, documents.KindRegister)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCreateRequiresManageDocuments(t *testing.T) {
	body := `{"title":"Analyse d'impact","kind":"analyse_impact","url":"https://docs.example.fr/aipd.pdf"}`
	for role, want := range map[authz.Role]int{
		authz.RoleEthicsOfficer: http.StatusCreated,
		authz.RoleAuditor:       http.StatusForbidden,
		authz.RoleNone:          http.StatusForbidden,
	} {
		h := documents.NewHandler(documents.NewService(&stubRepo{}, nil, nil, nil), testkit.Authz(role))
		r := chi.NewRouter()
		r.Route("/api/documents", h.MountRoutes)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodPost, "/api/documents/", strings.NewReader(body)), testkit.Member()))
		assert.Equal(t, want, rr.Code, role.String())
	}
}
