package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/XMinty77/DungeonCracker/internal/dungeon"
	"github.com/XMinty77/DungeonCracker/internal/mc"
)

func main() {
	var (
		mode        = flag.String("mode", "crack", "prepare, crack, or crack_partial")
		branchStart = flag.Int64("branch-start", 0, "first branch to search (crack_partial only)")
		branchEnd   = flag.Int64("branch-end", 0, "branch end, exclusive (crack_partial only)")
	)
	flag.Usage = usage
	flag.Parse()

	// Positional grammar, not flags: x y z version biome [floor_size]
	// [floor_rows...]. A seed cracker is run from shell scripts and
	// one-liners far more often than it's run interactively, and the
	// reference tool this is ported from takes the same positionals.
	args := flag.Args()
	if len(args) < 5 {
		usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[dungeon_cracker] ", log.LstdFlags)

	x, errX := strconv.ParseInt(args[0], 10, 32)
	y, errY := strconv.ParseInt(args[1], 10, 32)
	z, errZ := strconv.ParseInt(args[2], 10, 32)
	if errX != nil || errY != nil || errZ != nil {
		logger.Fatalf("spawner coordinates must be integers: x=%q y=%q z=%q", args[0], args[1], args[2])
	}

	version, err := mc.ParseVersion(args[3])
	if err != nil {
		logger.Fatalf("%v", err)
	}
	biomeTok := strings.ToUpper(args[4])
	if biomeTok == "NOTDESERT" {
		biomeTok = "NOT_DESERT"
	}
	biome, err := dungeon.ParseBiomeType(biomeTok)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	rest := args[5:]
	floorSizeTok := ""
	rows := rest
	if len(rest) > 0 && strings.Contains(rest[0], "x") {
		floorSizeTok = rest[0]
		rows = rest[1:]
	}
	floorSize, err := dungeon.ParseFloorSize(floorSizeTok)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	grid, err := dungeon.BuildFloorGrid(floorSize, rows)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	start := time.Now()

	switch *mode {
	case "prepare":
		result, err := dungeon.PrepareCrack(int32(x), int32(y), int32(z), version, floorSize, grid)
		if err != nil {
			logger.Fatalf("prepare: %v", err)
		}
		fmt.Printf("total_branches=%s possibilities=%d dimensions=%d info_bits=%.1f\n",
			humanize.Comma(result.TotalBranches), result.Possibilities, result.Dimensions, result.InfoBits)

	case "crack":
		if tty {
			logger.Printf("cracking %d floor interpretations, this can take a while", mustInterpretationCount(dungeon.SequenceFromGrid(grid, floorSize)))
		}
		result, err := dungeon.CrackDungeon(int32(x), int32(y), int32(z), version, biome, floorSize, grid)
		if err != nil {
			logger.Fatalf("crack: %v", err)
		}
		printResult(result)
		if tty {
			logger.Printf("done in %s", time.Since(start).Round(time.Millisecond))
		}

	case "crack_partial":
		result, err := dungeon.CrackDungeonPartial(int32(x), int32(y), int32(z), version, biome, floorSize, grid, *branchStart, *branchEnd)
		if err != nil {
			logger.Fatalf("crack_partial: %v", err)
		}
		printResult(result)

	default:
		fmt.Fprintf(os.Stderr, "unknown -mode %q\n", *mode)
		usage()
		os.Exit(2)
	}
}

func mustInterpretationCount(floorSequence string) int {
	possibilities, ok := dungeon.GetAllPossibilities(floorSequence)
	if !ok {
		return 0
	}
	return len(possibilities)
}

func printResult(r dungeon.CrackResult) {
	fmt.Printf("dungeon_seeds (%s):\n", humanize.Comma(int64(len(r.DungeonSeeds))))
	for _, s := range r.DungeonSeeds {
		fmt.Printf("  %d\n", s)
	}
	fmt.Printf("structure_seeds (%s):\n", humanize.Comma(int64(len(r.StructureSeeds))))
	for _, s := range r.StructureSeeds {
		fmt.Printf("  %d\n", s)
	}
	fmt.Printf("world_seeds (%s):\n", humanize.Comma(int64(len(r.WorldSeeds))))
	for _, s := range r.WorldSeeds {
		fmt.Printf("  %d\n", s)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: dungeon_cracker [flags] <x> <y> <z> <version> <biome> [floor_size] [floor_rows...]\n\n")
	fmt.Fprintf(os.Stderr, "  version:     1.8 .. 1.17\n")
	fmt.Fprintf(os.Stderr, "  biome:       unknown, desert, notdesert (any case; not_desert also accepted)\n")
	fmt.Fprintf(os.Stderr, "  floor_size:  9x9, 7x9, 9x7, or 7x7 (default 9x9)\n")
	fmt.Fprintf(os.Stderr, "  floor_rows:  one string per row, north to south, each a run of tile\n")
	fmt.Fprintf(os.Stderr, "               digits (0=mossy 1=cobble 2=air 3=unknown 4=unknown-solid)\n")
	fmt.Fprintf(os.Stderr, "               as wide as floor_size; rows past the end default to 4\n\n")
	fmt.Fprintf(os.Stderr, "example: dungeon_cracker 320 29 -418 1.13 notdesert 7x7 \\\n")
	fmt.Fprintf(os.Stderr, "           1111101 1111111 1111101 1100101 1111110 1111100 0111011\n\n")
	flag.PrintDefaults()
}
