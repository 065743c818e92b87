//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"estate_reco/internal/adapters/sparql"
	"estate_reco/internal/app"
	"estate_reco/internal/domain"
)

const dataset = "NhaTot_realestate"

// seedUpdate inserts two projects: one near the default reference point with
// facilities and one far away with an unparseable geo literal.
func seedUpdate(prefix string) string {
	return fmt.Sprintf(`
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX : <%s>
INSERT DATA {
  :p1 rdf:type :Project ;
      :project_name "Căn hộ Linh Trung" ;
      :type_name "Căn hộ" ;
      :geo "10.85,106.79" ;
      :facilities "Hồ bơi", "Gym" ;
      :surroundings "Công viên" ;
      :located_at :loc1 .
  :loc1 :ward_name "Linh Trung" ; :area_name "Thủ Đức" ; :region_name "Hồ Chí Minh" .
  :u1 rdf:type :RealEstate ; :belongs_to_project :p1 ; :price "3200000000" ; :rooms "2" ; :size "68" .

  :p2 rdf:type :Project ;
      :project_name "Nhà phố Bình Chánh" ;
      :geo "not-a-point" ;
      :facilities "Sân vườn" .
}`, prefix)
}

func TestFuseki_ListingsQueryAndRanking(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "stain/jena-fuseki",
		Tag:        "4.8.0",
		Env: []string{
			"ADMIN_PASSWORD=admin",
			"FUSEKI_DATASET_1=" + dataset,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run fuseki: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	base := fmt.Sprintf("http://127.0.0.1:%s/%s", resource.GetPort("3030/tcp"), dataset)
	update := func() error {
		form := url.Values{"update": {seedUpdate(sparql.DefaultOntologyPrefix)}}
		req, err := http.NewRequest(http.MethodPost, base+"/update", strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth("admin", "admin")
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode/100 != 2 {
			return fmt.Errorf("update status %d", res.StatusCode)
		}
		return nil
	}
	pool.MaxWait = 90 * time.Second
	if err := pool.Retry(update); err != nil {
		t.Fatalf("seed fuseki: %v", err)
	}

	client, err := sparql.New(base+"/sparql", "", 10, 10*time.Second)
	if err != nil {
		t.Fatalf("sparql.New: %v", err)
	}
	svc := app.NewRecommendationService(client, 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rec, err := svc.Recommend(ctx, domain.DefaultReference)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if rec.Considered != 2 || len(rec.Top) != 2 {
		t.Fatalf("expected two projects, got considered=%d top=%d", rec.Considered, len(rec.Top))
	}
	first := rec.Top[0]
	if first.Name != "Căn hộ Linh Trung" || first.Score != 4 {
		t.Fatalf("unexpected first entry: %s score %d reasons %q", first.Name, first.Score, first.Reasons)
	}
	if first.Price == nil || *first.Price != "3200000000" {
		t.Fatalf("unit details not joined: %+v", first.Candidate)
	}
	second := rec.Top[1]
	if second.Coordinate != nil || second.Score != 1 {
		t.Fatalf("malformed geo must only drop the proximity point: %+v", second)
	}
}
