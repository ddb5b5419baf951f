package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

type MeshParameters struct {
	File      string  `json:"File"` // SU2 mesh, a structured mesh is generated when empty
	Dimension int     `json:"Dimension"`
	NX        int     `json:"NX"`
	NY        int     `json:"NY"`
	XMin      float64 `json:"XMin"`
	XMax      float64 `json:"XMax"`
	YMax      float64 `json:"YMax"`
	Triangles bool    `json:"Triangles"`
}

type LawParameters struct {
	Type         string  `json:"Type"`
	Density      float64 `json:"Density"`
	BulkModulus  float64 `json:"BulkModulus"`
	Viscosity    float64 `json:"Viscosity"`
	Exponent     int     `json:"Exponent"`
	SpecificHeat float64 `json:"SpecificHeat"`
}

type MaterialParameters struct {
	Permeability    float64    `json:"Permeability"`
	PressureCoeff   float64    `json:"PressureCoeff"`
	SaturationCoeff float64    `json:"SaturationCoeff"`
	GradientCoeff   float64    `json:"GradientCoeff"`
	Density         float64    `json:"Density"`
	BulkModulus     float64    `json:"BulkModulus"`
	CapillaryCoeff  float64    `json:"CapillaryCoeff"`
	Gravity         [3]float64 `json:"Gravity"`
}

// InitialCondition is either a constant or Value + Gradient.x
type InitialCondition struct {
	Type     string     `json:"Type"`
	Value    float64    `json:"Value"`
	Gradient [3]float64 `json:"Gradient"`
}

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title           string                      `json:"Title"`
	Variables       []string                    `json:"Variables"`
	Equation        string                      `json:"Equation"` // Variable whose equation carries the flux
	Mesh            MeshParameters              `json:"Mesh"`
	Ranks           int                         `json:"Ranks"`
	Partitioner     string                      `json:"Partitioner"`
	GhostLayers     int                         `json:"GhostLayers"`
	Threads         int                         `json:"Threads"`
	QuadratureOrder int                         `json:"QuadratureOrder"`
	Limiter         string                      `json:"Limiter"`
	VerifyCommLists *bool                       `json:"VerifyCommLists"`
	Law             LawParameters               `json:"Law"`
	Material        MaterialParameters          `json:"Material"`
	Initial         map[string]InitialCondition `json:"Initial"` // Keyed by variable name
}

func (ip *InputParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.SetDefaults()
	return ip.Validate()
}

func (ip *InputParameters) SetDefaults() {
	if len(ip.Variables) == 0 {
		ip.Variables = []string{"pressure"}
	}
	if ip.Equation == "" {
		ip.Equation = ip.Variables[0]
	}
	if ip.Mesh.Dimension == 0 {
		ip.Mesh.Dimension = 1
	}
	if ip.Mesh.File == "" {
		if ip.Mesh.NX == 0 {
			ip.Mesh.NX = 10
		}
		if ip.Mesh.Dimension == 2 && ip.Mesh.NY == 0 {
			ip.Mesh.NY = ip.Mesh.NX
		}
		if ip.Mesh.XMax == ip.Mesh.XMin {
			ip.Mesh.XMax = ip.Mesh.XMin + 1
		}
		if ip.Mesh.Dimension == 2 && ip.Mesh.YMax == 0 {
			ip.Mesh.YMax = 1
		}
	}
	if ip.Ranks == 0 {
		ip.Ranks = 1
	}
	if ip.Partitioner == "" {
		ip.Partitioner = "contiguous"
	}
	if ip.GhostLayers == 0 {
		ip.GhostLayers = 2
	}
	if ip.Threads == 0 {
		ip.Threads = 1
	}
	if ip.QuadratureOrder == 0 {
		ip.QuadratureOrder = 2
	}
	if ip.Limiter == "" {
		ip.Limiter = "vanleer"
	}
	if ip.VerifyCommLists == nil {
		verify := true
		ip.VerifyCommLists = &verify
	}
	if ip.Law.Type == "" {
		ip.Law.Type = "saturated"
	}
	if ip.Law.Density == 0 {
		ip.Law.Density = 1
	}
	if ip.Law.Viscosity == 0 {
		ip.Law.Viscosity = 1
	}
	if ip.Law.Exponent == 0 {
		ip.Law.Exponent = 2
	}
	if ip.Law.SpecificHeat == 0 {
		ip.Law.SpecificHeat = 1
	}
	if ip.Material.Permeability == 0 {
		ip.Material.Permeability = 1
	}
	if ip.Material.Density == 0 {
		ip.Material.Density = ip.Law.Density
	}
	for _, name := range ip.Variables {
		if _, ok := ip.Initial[name]; !ok {
			if ip.Initial == nil {
				ip.Initial = make(map[string]InitialCondition)
			}
			ip.Initial[name] = InitialCondition{Type: "constant"}
		}
	}
}

func (ip *InputParameters) Validate() (err error) {
	hasVar := func(name string) bool {
		for _, v := range ip.Variables {
			if strings.EqualFold(v, name) {
				return true
			}
		}
		return false
	}
	switch {
	case !hasVar(ip.Equation):
		err = fmt.Errorf("equation variable %q is not one of %v", ip.Equation, ip.Variables)
	case !hasVar("pressure"):
		err = fmt.Errorf("a pressure variable is required, have %v", ip.Variables)
	case ip.Mesh.Dimension != 1 && ip.Mesh.Dimension != 2:
		err = fmt.Errorf("mesh dimension must be 1 or 2, have %d", ip.Mesh.Dimension)
	case ip.Ranks < 1:
		err = fmt.Errorf("need at least one rank, have %d", ip.Ranks)
	case ip.Ranks > 1 && ip.GhostLayers < 2:
		err = fmt.Errorf("limiter needs at least 2 ghost layers, have %d", ip.GhostLayers)
	case ip.Threads < 1:
		err = fmt.Errorf("need at least one thread, have %d", ip.Threads)
	case ip.Law.Viscosity <= 0:
		err = fmt.Errorf("viscosity must be positive, have %g", ip.Law.Viscosity)
	}
	if err != nil {
		return
	}
	switch strings.ToLower(ip.Law.Type) {
	case "unsaturated":
		if !hasVar("saturation") {
			err = fmt.Errorf("unsaturated law needs a saturation variable")
		}
	case "multicomponent":
		if !hasVar("fraction") {
			err = fmt.Errorf("multicomponent law needs a fraction variable")
		}
	case "heat":
		if !hasVar("temperature") {
			err = fmt.Errorf("heat law needs a temperature variable")
		}
	}
	if err != nil {
		return
	}
	for name, ic := range ip.Initial {
		if !hasVar(name) {
			return fmt.Errorf("initial condition for unknown variable %q", name)
		}
		if ic.Type != "constant" && ic.Type != "linear" {
			return fmt.Errorf("initial condition %q for %s is not constant or linear", ic.Type, name)
		}
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t= Variables\n", ip.Variables)
	fmt.Printf("[%s]\t\t= Equation\n", ip.Equation)
	if ip.Mesh.File != "" {
		fmt.Printf("[%s]\t\t= Mesh File\n", ip.Mesh.File)
	} else {
		fmt.Printf("[%dD %dx%d]\t\t= Generated Mesh\n", ip.Mesh.Dimension, ip.Mesh.NX, ip.Mesh.NY)
	}
	fmt.Printf("[%d]\t\t\t= Ranks (%s)\n", ip.Ranks, ip.Partitioner)
	fmt.Printf("[%d]\t\t\t= Threads per rank\n", ip.Threads)
	fmt.Printf("[%d]\t\t\t= Ghost Layers\n", ip.GhostLayers)
	fmt.Printf("[%s]\t\t= Limiter\n", ip.Limiter)
	fmt.Printf("[%s]\t\t= Transport Law\n", ip.Law.Type)
	keys := make([]string, 0, len(ip.Initial))
	for k := range ip.Initial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Initial[%s] = %v\n", key, ip.Initial[key])
	}
}
