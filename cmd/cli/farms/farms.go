package farms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/agripulse/agripulse/cmd/cli/config"
	"github.com/agripulse/agripulse/cmd/cli/output"
	"github.com/agripulse/agripulse/cmd/cli/root"
	"github.com/agripulse/agripulse/internal/models"
)

func init() {
	farmsCmd := &cobra.Command{
		Use:   "farms",
		Short: "Manage farms",
	}

	farmsCmd.AddCommand(
		listFarmsCmd(),
		createFarmCmd(),
		deleteFarmCmd(),
	)

	root.GetRoot().AddCommand(farmsCmd)
}

func listFarmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List farms",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/v1/farms", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var farms []models.Farm
			if err := json.NewDecoder(resp.Body).Decode(&farms); err != nil {
				fmt.Println("decode response:", err)
				return
			}

			rows := make([][]interface{}, 0, len(farms))
			for _, f := range farms {
				rows = append(rows, []interface{}{f.ID, f.Name, f.Crop, f.AreaHectares, f.Latitude, f.Longitude})
			}
			output.RenderTable([]string{"ID", "Name", "Crop", "Hectares", "Lat", "Lon"}, rows)
		},
	}
}

func createFarmCmd() *cobra.Command {
	var name, crop string
	var lat, lon, area float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create farm",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			payload := map[string]interface{}{
				"name":          name,
				"latitude":      lat,
				"longitude":     lon,
				"area_hectares": area,
				"crop":          crop,
			}
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/v1/farms", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "farm name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the farm centroid")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of the farm centroid")
	cmd.Flags().Float64Var(&area, "area", 0, "area in hectares")
	cmd.Flags().StringVar(&crop, "crop", "", "main crop")

	return cmd
}

func deleteFarmCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete farm",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", fmt.Sprintf("%s/v1/farms/%d", config.APIURL(), id), nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("Farm deleted")
			} else {
				fmt.Println("Delete failed, status:", resp.StatusCode)
			}
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "farm id")

	return cmd
}
