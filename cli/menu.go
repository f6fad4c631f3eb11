package cli

// This file contains the interactive main menu and its state transitions.

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidMenuChoice = errors.New("invalid option")

// State is a position in the interactive menu.
type State int

const (
	StateMainMenu State = iota
	StateFetching
	StateBuilding
	StateConfiguringPath
	StateExited
)

func (s State) String() string {
	switch s {
	case StateMainMenu:
		return "main-menu"
	case StateFetching:
		return "fetching"
	case StateBuilding:
		return "building"
	case StateConfiguringPath:
		return "configuring-path"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transition maps a main menu choice to the next state. Unrecognized input
// keeps the menu where it is.
func transition(choice string) (State, error) {
	switch strings.TrimSpace(choice) {
	case "1":
		return StateFetching, nil
	case "2":
		return StateBuilding, nil
	case "3":
		return StateConfiguringPath, nil
	case "4":
		return StateExited, nil
	default:
		return StateMainMenu, fmt.Errorf("%w: %q", ErrInvalidMenuChoice, choice)
	}
}

func (s *Session) banner() {
	fmt.Fprintln(s.out, s.colors.title("ikun library build tool"))
	fmt.Fprintln(s.out, "Downloads the ikun sources from GitHub and builds the ikun library manager,")
	fmt.Fprintln(s.out, "which is then used to manage the library.")
	fmt.Fprintf(s.out, "Platform: %s\n", s.platform)
	fmt.Fprintf(s.out, "Working directory: %s\n\n", s.workDir)
}

func (s *Session) printMenu() {
	fmt.Fprintln(s.out, "1. Download the ikun library core")
	fmt.Fprintln(s.out, "2. Build the ikun library manager")
	fmt.Fprintln(s.out, "3. Configure the PATH environment variable")
	fmt.Fprintln(s.out, "4. Exit")
	fmt.Fprintln(s.out, "Running the options in order is recommended.")
	fmt.Fprintln(s.out)
}

// Loop runs the menu until the user exits or input ends. Failures inside a
// flow are reported and the menu is shown again; nothing here is fatal.
func (s *Session) Loop() {
	s.banner()

	for {
		s.printMenu()
		line, ok := s.readLine("Enter option: ")
		if !ok {
			return
		}

		state, err := transition(line)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Menu choice rejected")
			fmt.Fprintln(s.out, s.colors.warn(fmt.Sprintf("Invalid option: %s", line)))
			continue
		}

		s.logger.Debug().Str("state", state.String()).Msg("Menu transition")

		switch state {
		case StateFetching:
			s.fetchArtifacts()
		case StateBuilding:
			s.build()
		case StateConfiguringPath:
			s.configurePath()
		case StateExited:
			return
		}
		fmt.Fprintln(s.out)
	}
}
