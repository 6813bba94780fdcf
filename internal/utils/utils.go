package utils

import (
	"fmt"
	"regexp"
)

// MinMaxElemF returns the min and the max values of vs.
// MinMaxElemF panics if len(vs) = 0
func MinMaxElemF(vs ...float64) (float64, float64) {
	vmin, vmax := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < vmin {
			vmin = v
		} else if v > vmax {
			vmax = v
		}
	}
	return vmin, vmax
}

/*
FindRegexGroups returns a map containing the group names as keys and the values matched as values, if the string value matches the regex.
*/
func FindRegexGroups(reg *regexp.Regexp, v string) (map[string]string, error) {
	matches := reg.FindStringSubmatch(v)
	if len(matches) == 0 {
		return nil, fmt.Errorf("failed to find submatch in regex %v for value %v", reg.String(), v)
	}

	groupNames := reg.SubexpNames()
	matches, groupNames = matches[1:], groupNames[1:]
	res := make(map[string]string, len(matches))
	for i := range groupNames {
		res[groupNames[i]] = matches[i]
	}

	return res, nil
}
