// seed_decisions.go: standalone script to load BWM problem files into the Weigh API as stored decisions.
//
// Usage:
//
//	go run scripts/seed_decisions.go -api http://localhost:8700 -owner system problems/*.yaml
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
	"github.com/MikeSquared-Agency/Weigh/internal/validation"
)

type createRequest struct {
	Name     string   `json:"name"`
	Criteria []string `json:"criteria"`
}

type selectionRequest struct {
	Best  bwm.CriterionID `json:"best"`
	Worst bwm.CriterionID `json:"worst"`
}

type comparisonsRequest struct {
	BestToOthers  map[bwm.CriterionID]float64 `json:"best_to_others"`
	OthersToWorst map[bwm.CriterionID]float64 `json:"others_to_worst"`
}

type createdDecision struct {
	ID string `json:"id"`
}

type seeder struct {
	client *http.Client
	apiURL string
	owner  string
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Weigh API base URL")
	owner := flag.String("owner", "system", "X-Owner-ID header value")
	dryRun := flag.Bool("dry-run", false, "print decisions without posting")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("no problem files given")
	}

	s := &seeder{client: &http.Client{}, apiURL: strings.TrimRight(*apiURL, "/"), owner: *owner}
	created, skipped := 0, 0

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			skipped++
			continue
		}
		name, p, err := validation.ParseProblem(data)
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			skipped++
			continue
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		if *dryRun {
			fmt.Printf("%s: %d criteria, best=%d worst=%d\n", name, len(p.Criteria), p.Best, p.Worst)
			continue
		}

		id, err := s.seed(name, p)
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			skipped++
			continue
		}
		log.Printf("created %s (%s)", id, name)
		created++
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}

// seed creates the decision and replays its selection and comparisons. The
// API numbers criteria from 1 in creation order, so problem ids are remapped
// by position.
func (s *seeder) seed(name string, p bwm.Problem) (string, error) {
	names := make([]string, len(p.Criteria))
	remap := make(map[bwm.CriterionID]bwm.CriterionID, len(p.Criteria))
	for i, c := range p.Criteria {
		names[i] = c.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("Criterion %d", c.ID)
		}
		remap[c.ID] = bwm.CriterionID(i + 1)
	}

	var d createdDecision
	if err := s.do("POST", "/api/v1/decisions", createRequest{Name: name, Criteria: names}, http.StatusCreated, &d); err != nil {
		return "", fmt.Errorf("create: %w", err)
	}

	base := "/api/v1/decisions/" + d.ID
	sel := selectionRequest{Best: remap[p.Best], Worst: remap[p.Worst]}
	if err := s.do("PUT", base+"/selection", sel, http.StatusOK, nil); err != nil {
		return d.ID, fmt.Errorf("selection: %w", err)
	}

	cmp := comparisonsRequest{
		BestToOthers:  make(map[bwm.CriterionID]float64, len(p.BestToOthers)),
		OthersToWorst: make(map[bwm.CriterionID]float64, len(p.OthersToWorst)),
	}
	for id, v := range p.BestToOthers {
		cmp.BestToOthers[remap[id]] = v
	}
	for id, v := range p.OthersToWorst {
		cmp.OthersToWorst[remap[id]] = v
	}
	if err := s.do("PUT", base+"/comparisons", cmp, http.StatusOK, nil); err != nil {
		return d.ID, fmt.Errorf("comparisons: %w", err)
	}
	return d.ID, nil
}

func (s *seeder) do(method, path string, body any, want int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, s.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", s.owner)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
