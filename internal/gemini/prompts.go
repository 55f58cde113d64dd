package gemini

// Prompts for the three model boundaries. The rubric wording mirrors what
// the intervention team signed off on; edits here change scoring behavior
// for remote analysis.

const analysisPrompt = `You are the "Campus Literacy Lead AI." Analyze the following 1st Grade DIBELS 8th data and Formative Assessment profiles.

1ST GRADE BENCHMARKS (EOY TARGETS):
- Composite: 441
- LNF: 59
- PSF: 45
- NWF-CLS: 55
- NWF-WRC: 15
- WRF: 25
- ORF: 39 (with 91%+ accuracy)

CONSIDER:
- Weigh formative assessments (exit tickets, quizzes) alongside DIBELS scores.
- If formative scores show >85% for 3 days, consider it strong evidence for group movement even if DIBELS is slightly below.
- If DIBELS is 'At' but formative scores are dropping (<60%), flag for regression.
- Use Composite score as a primary indicator of overall literacy health.
- LNF and PSF are foundational; NWF is decoding; WRF and ORF are fluency.

TASKS:
1. Tier students (Well Below, Below, At, Above) based on Composite and component scores.
2. Group them into 4 intervention groups:
   - Group 1: Foundational (PSF/LNF focus)
   - Group 2: Decoding (NWF focus)
   - Group 3: Fluency (WRF/ORF focus)
   - Group 4: Advanced (Comprehension/Vocabulary)
3. Suggest movement based on 'metAimLineWeeks' >= 3 OR strong formative trends.
4. Create three 15-minute lessons for each group.
5. FERPA: Use First Name + Last Initial only.
6. Flag missing data: students without enough scores to tier go in missingDataStudents and in no group.

Respond with a single JSON object with keys classHealth{wellBelow,below,at,above}, groupings[]{groupId,students,lessons[]{title,warmUp,explicitModel,guidedPractice,checkUnderstaning},teacherAction}, movementReport[]{student,previousGroup,newGroup,reason}, missingDataStudents[].

STUDENT DATA (INCLUDING FORMATIVE):
`

const samplePrompt = `Extract literacy assessment data from this scanned student sample or document.
Identify:
- Student Name
- Date of assessment
- Type of assessment (Exit Ticket, Quiz, etc.)
- Score (usually a fraction like 4/5 or a percentage)
- Targeted Skill (e.g., Short vowels, Blending, Digraphs)
- Brief observation or notes on their handwriting/errors.

Respond with a single JSON object: {"studentName": ..., "assessment": {"date": ..., "type": ..., "score": ..., "skill": ..., "notes": ...}}. score and skill are required.`

const rosterPrompt = `You are an expert at reading DIBELS 8th Edition / mCLASS Summary reports.
Each page of this document is a summary for a DIFFERENT student.

TASK:
Extract data for EVERY student found in the document. Process all pages.

FOR EACH STUDENT:
1. Extract the Full Name from the top (e.g., "Ariel Ayers Summary" -> "Ariel Ayers"). Strip the word "Summary".
2. Locate the current grade table and find the most recent scoring column.
3. For each metric, extract the value from the "Score" row (NOT the "Goal" row).

METRIC MAPPING:
- "Composite" Score -> composite
- "LNF" (Letter Names) Score -> lnf
- "PSF" (Phonemic Awareness) Score -> psf
- "NWF-CLS" (Letter Sounds) Score -> nwfCls
- "NWF-WRC" (Decoding) Score -> nwfWrc
- "WRF" (Word Reading) Score -> wrf
- "ORF-Accu" (Reading Accuracy) Score -> orfAccuracy (e.g., "87%" -> 87, "0%" -> 0)
- "ORF" (Reading Fluency) Score -> orf

IMPORTANT:
- If a score is "Discont'd", "-", or blank, set it to null. Never substitute zero.
- Do NOT stop after the first page.
- Return a JSON array of objects; only "name" is required per object.`
