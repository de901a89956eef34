/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package solver adapts an external SAT-style dependency solver to a narrow
contract: given a universe and a request, return either a target universe or
a list of reason facts explaining why no target exists.

To check a request we:

 1. Encode the universe through the cudf table: every (name, version) pair
 becomes a pseudo-boolean variable, named by the escaped package name and its
 dense integer version.

 2. Iterate through the encoded packages and create pseudo-boolean
 constraints for each variable:
 - If the package is installed and not requested changed, a soft clause
   prefers keeping it.
 - If it depends on other packages, each CNF clause becomes an implication
   clause over the candidate versions.
 - If it conflicts with other packages, each conflicting pair is mutually
   excluded.
 - All versions of a name exclude each other (at most 1).

 3. Request atoms become hard constraints: install and upgrade atoms require
 at least one matching version, remove atoms forbid every matching version.
 Soft clauses bias the choice towards the newest matching versions.

 4. Find a solution to the SAT dependency problem if it exists. The model
 assigns true to exactly the variables whose packages should be installed
 after the operation; they are folded back into a target universe.

 5. If there is no solution, replay the request over the universe to build
 the reason facts (missing dependencies, conflicting pairs, and the
 dependency chains that led to them), rooted at a synthetic request vertex.

The adapter does not retry, back off, or interpret reasons.
*/
package solver
